package loot

import (
	"encoding/binary"
	"math"

	"skirmish/server/application/world"
)

type Item struct {
	Kind   string
	Weight int
}

// Table はドロップの個数範囲と種類の重みです。
type Table struct {
	Min    int
	Max    int
	Radius float64
	Items  []Item
}

type Drop struct {
	Kind     string
	Position world.Vec3
}

// Scatter は pos を種にしてドロップを生成します。同じ pos と table なら常に同じ結果です。
func Scatter(pos world.Vec3, table Table) []Drop {
	total := 0
	for _, it := range table.Items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	if total == 0 || table.Max <= 0 {
		return nil
	}

	g := NewLCG(Seed(pos))
	count := table.Min
	if table.Max > table.Min {
		count += g.Intn(table.Max - table.Min + 1)
	}

	drops := make([]Drop, 0, count)
	for range count {
		kind := pick(g, table.Items, total)
		angle := g.Float() * 2 * math.Pi
		dist := math.Sqrt(g.Float()) * table.Radius
		drops = append(drops, Drop{
			Kind: kind,
			Position: world.Vec3{
				X: pos.X + math.Cos(angle)*dist,
				Y: pos.Y,
				Z: pos.Z + math.Sin(angle)*dist,
			},
		})
	}
	return drops
}

func pick(g *LCG, items []Item, total int) string {
	r := g.Intn(total)
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		if r < it.Weight {
			return it.Kind
		}
		r -= it.Weight
	}
	return items[len(items)-1].Kind
}

// Encode はドロップ列の正規バイト表現です。決定性の比較とログ用です。
func Encode(drops []Drop) []byte {
	buf := make([]byte, 0, len(drops)*32)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(drops)))
	for _, d := range drops {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(d.Kind)))
		buf = append(buf, d.Kind...)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Position.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Position.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Position.Z))
	}
	return buf
}
