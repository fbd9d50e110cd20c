package world

import "math"

// Vec3 はワールド座標です。Y が高さです。
type Vec3 struct {
	X float64 `yaml:"x" json:"x" msgpack:"x"`
	Y float64 `yaml:"y" json:"y" msgpack:"y"`
	Z float64 `yaml:"z" json:"z" msgpack:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// HorizontalDist は XZ 平面上の距離です。
func (v Vec3) HorizontalDist(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// minVectorLen 未満の長さは向きを持たないとみなします。
const minVectorLen = 1e-9

// Normalize は単位ベクトルを返します。長さがほぼ 0 の場合は false を返すので、
// 呼び出し側はその tick の移動をスキップします。
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Len()
	if l < minVectorLen {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

// Yaw は XZ 平面上の向きをラジアンで返します (+Z が 0)。
func (v Vec3) Yaw() float64 { return math.Atan2(v.X, v.Z) }

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
