package application

import (
	"math"
	"math/rand/v2"

	"skirmish/server/application/replication"
	"skirmish/server/application/world"
)

const (
	pilotDangerDist float64 = 3.0  // 弾回避を始める距離
	pilotNoiseAngle float64 = 0.52 // ±30度 (π/6 ≈ 0.52 rad)
	rushChance      float64 = 0.02 // 毎tick 2% の確率で突撃
	turretChance    float64 = 0.002
)

// PilotAction は 1 tick 分の操作です。
type PilotAction struct {
	Move   world.Vec3 // XZ 平面の単位ベクトル。ゼロなら停止
	Attack bool
	Target world.Vec3
	Turret bool // 足元にタレットを置く
}

// AutoPilot はアバターを操作するルールベースの AI です。
// 無人のピアや負荷試験用のクライアントがアバターを動かすのに使います。
type AutoPilot struct {
	CloseRange  float64 // 後退を始める距離
	MidRange    float64 // ストレイフを始める距離
	AttackRange float64
	StrafeSign  float64 // +1: 反時計回り, -1: 時計回り
	RushChance  float64
	Speed       float64

	// TurretChance は敵が見えている tick ごとにタレットを置く確率です。
	TurretChance float64

	rng *rand.Rand
}

// NewAutoPilot はランダムな個性を持つ AI を生成します。
func NewAutoPilot(rng *rand.Rand) *AutoPilot {
	strafeSign := 1.0
	if rng.Float64() < 0.5 {
		strafeSign = -1.0
	}
	return &AutoPilot{
		CloseRange:   3.0 + rng.Float64()*4.0,   // 3〜7
		MidRange:     10.0 + rng.Float64()*10.0, // 10〜20
		AttackRange:  25.0,
		StrafeSign:   strafeSign,
		RushChance:   rushChance,
		Speed:        6.0,
		TurretChance: turretChance,
		rng:          rng,
	}
}

// Decide は self の周囲を見て次の操作を決めます。
func (p *AutoPilot) Decide(self *world.Avatar, w *world.World) PilotAction {
	if self == nil || !self.Targetable() {
		return PilotAction{}
	}

	// 被弾回避を優先
	if dir, ok := p.evade(self, w.Projectiles()); ok {
		return PilotAction{Move: p.addNoise(dir)}
	}

	nearest := nearestEnemy(self, w)
	if nearest == nil {
		return PilotAction{}
	}
	offset := nearest.Position.Sub(self.Position)
	offset.Y = 0
	dist := offset.Len()
	if dist < 0.001 {
		return PilotAction{}
	}
	n := offset.Scale(1 / dist)
	action := PilotAction{
		Attack: dist <= p.AttackRange,
		Target: nearest.Position,
	}
	if p.TurretChance > 0 && p.rng.Float64() < p.TurretChance {
		action.Turret = true
	}

	// ランダム突撃: 一定確率で距離に関係なく接近
	if p.rng.Float64() < p.RushChance {
		action.Move = p.addNoise(n)
		return action
	}

	var dir world.Vec3
	switch {
	case dist < p.CloseRange:
		// 近距離: 後退
		dir = world.Vec3{X: -n.X, Z: -n.Z}
	case dist < p.MidRange:
		// 中距離: 横移動
		dir = world.Vec3{X: -n.Z * p.StrafeSign, Z: n.X * p.StrafeSign}
	default:
		dir = n
	}
	action.Move = p.addNoise(dir)
	return action
}

// Drive は slot のアバターに Decide の結果を適用します。
// タレットは権威側なら足元に置きます。参加側では戻り値の Turret を見てホストへ要求します。
func (p *AutoPilot) Drive(s *Simulation, slot world.AvatarSlot) PilotAction {
	self := s.World().Avatar(slot)
	action := p.Decide(self, s.World())
	if action.Turret && s.Mode() != replication.ModeClient {
		s.PlaceTurret(self.Position)
	}
	if action.Move != (world.Vec3{}) {
		s.MoveAvatar(slot, action.Move, p.Speed)
	}
	if action.Attack {
		s.Attack(slot, action.Target)
	}
	return action
}

// evade は自分に向かってくる敵弾を避ける方向を返します。
func (p *AutoPilot) evade(self *world.Avatar, projectiles []*world.Projectile) (world.Vec3, bool) {
	closestDist := math.MaxFloat64
	var closest *world.Projectile

	for _, pr := range projectiles {
		if pr.Owner != world.OwnerHostile {
			continue
		}
		d := self.Position.Sub(pr.Position)
		d.Y = 0
		dist := d.Len()
		if dist > pilotDangerDist {
			continue
		}
		// 弾が自分に向かっているか確認（内積 > 0）
		if d.X*pr.Velocity.X+d.Z*pr.Velocity.Z <= 0 {
			continue
		}
		if dist < closestDist {
			closestDist = dist
			closest = pr
		}
	}
	if closest == nil {
		return world.Vec3{}, false
	}

	// 弾の進行方向に対して垂直に回避
	v, ok := world.Vec3{X: closest.Velocity.X, Z: closest.Velocity.Z}.Normalize()
	if !ok {
		return world.Vec3{}, false
	}
	return world.Vec3{X: -v.Z, Z: v.X}, true
}

// nearestEnemy は最寄りの生存エンティティを探します。構造物は狙いません。
func nearestEnemy(self *world.Avatar, w *world.World) *world.Entity {
	var nearest *world.Entity
	nearestDist := math.MaxFloat64
	for _, e := range w.Entities() {
		if !e.Alive || e.Hidden || !e.Category.Targetable() {
			continue
		}
		if d := self.Position.HorizontalDist(e.Position); d < nearestDist {
			nearestDist = d
			nearest = e
		}
	}
	return nearest
}

// addNoise は移動方向に ±30度 のランダムノイズを加えます。
func (p *AutoPilot) addNoise(dir world.Vec3) world.Vec3 {
	noise := (p.rng.Float64()*2 - 1) * pilotNoiseAngle
	cos, sin := math.Cos(noise), math.Sin(noise)
	return world.Vec3{
		X: dir.X*cos - dir.Z*sin,
		Z: dir.X*sin + dir.Z*cos,
	}
}
