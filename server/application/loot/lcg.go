package loot

import (
	"math"

	"skirmish/server/application/world"
)

// 32bit 線形合同法の定数 (Numerical Recipes)。両ピアで同じ列を得るため変更しないこと。
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// LCG は決定的な擬似乱数列です。暗号用途には使えません。
type LCG struct {
	state uint32
}

func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

func (g *LCG) Next() uint32 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return g.state
}

// Float は [0, 1) の値を返します。
func (g *LCG) Float() float64 {
	return float64(g.Next()) / (1 << 32)
}

// Intn は [0, n) の値を返します。下位ビットの周期が短いので上位ビットを使います。
func (g *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int((uint64(g.Next()) * uint64(n)) >> 32)
}

// 空間ハッシュ用の素数。
const (
	hashX uint32 = 73856093
	hashY uint32 = 19349663
	hashZ uint32 = 83492791
)

// Seed は死亡位置から種を導出します。座標は 0.01 単位で切り捨てるので、
// 同じイベント位置を受け取った全ピアで同じ値になります。
func Seed(pos world.Vec3) uint32 {
	return cell(pos.X)*hashX ^ cell(pos.Y)*hashY ^ cell(pos.Z)*hashZ
}

// cell は 0.01 単位のセル番号です。int32 の範囲で飽和させ、NaN は 0 にします。
func cell(v float64) uint32 {
	c := math.Floor(v * 100)
	if math.IsNaN(c) {
		return 0
	}
	return uint32(int32(min(max(c, math.MinInt32), math.MaxInt32)))
}
