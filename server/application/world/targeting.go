package world

import "math"

type Candidate struct {
	Slot     AvatarSlot
	Position Vec3
}

type Target struct {
	Candidate
	Distance float64
}

// Nearest は最も近い候補を返します。同距離なら列挙順で先の候補が勝ちます。
func Nearest(pos Vec3, candidates []Candidate) (Target, bool) {
	return NearestWithin(pos, candidates, math.Inf(1))
}

// NearestWithin は maxDist 以内で最も近い候補を返します。
func NearestWithin(pos Vec3, candidates []Candidate, maxDist float64) (Target, bool) {
	best := Target{Distance: math.Inf(1)}
	found := false
	for _, c := range candidates {
		d := pos.Dist(c.Position)
		if d > maxDist {
			continue
		}
		if d < best.Distance {
			best = Target{Candidate: c, Distance: d}
			found = true
		}
	}
	return best, found
}
