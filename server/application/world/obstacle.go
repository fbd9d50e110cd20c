package world

// AABB は軸平行の箱です。ワールド境界と静的な地形オブジェクトに使います。
type AABB struct {
	Min Vec3 `yaml:"min" json:"min" msgpack:"min"`
	Max Vec3 `yaml:"max" json:"max" msgpack:"max"`
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectsSphere は中心 c 半径 r の球と交差するかどうかです。
func (b AABB) IntersectsSphere(c Vec3, r float64) bool {
	closest := Vec3{
		X: clamp(c.X, b.Min.X, b.Max.X),
		Y: clamp(c.Y, b.Min.Y, b.Max.Y),
		Z: clamp(c.Z, b.Min.Z, b.Max.Z),
	}
	return closest.Dist(c) <= r
}

func (b AABB) Valid() bool {
	return b.Min.X < b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z < b.Max.Z
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HeightFunc は地形の高さ問い合わせです。純関数として扱います。
type HeightFunc func(x, z float64) float64

// Flat は一定の高さを返す HeightFunc です。
func Flat(y float64) HeightFunc {
	return func(float64, float64) float64 { return y }
}
