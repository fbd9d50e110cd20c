package world

import "time"

type ProjectileID uint32

type Projectile struct {
	ID       ProjectileID
	Kind     string
	Owner    Owner
	Shooter  EntityID
	Start    Vec3
	Position Vec3
	Velocity Vec3
	Radius   float64
	Damage   int
	Freeze   time.Duration

	MaxDistance float64
	Traveled    float64
}

// NewProjectile は origin から target へ向かう弾を作ります。
// 向きが決まらない (target == origin) 場合は false を返します。
func NewProjectile(owner Owner, shooter EntityID, origin, target Vec3, w Weapon) (*Projectile, bool) {
	dir, ok := target.Sub(origin).Normalize()
	if !ok || w.Speed <= 0 {
		return nil, false
	}
	return &Projectile{
		Kind:        w.Projectile,
		Owner:       owner,
		Shooter:     shooter,
		Start:       origin,
		Position:    origin,
		Velocity:    dir.Scale(w.Speed),
		Radius:      w.Radius,
		Damage:      w.Damage,
		Freeze:      w.Freeze,
		MaxDistance: w.MaxDistance,
	}, true
}

// Advance は dt 秒ぶん進め、開始点からの距離を更新します。
func (p *Projectile) Advance(dt time.Duration) {
	p.Position = p.Position.Add(p.Velocity.Scale(dt.Seconds()))
	p.Traveled = p.Position.Dist(p.Start)
}

// Spent は最大射程に達したかどうかです。
func (p *Projectile) Spent() bool {
	return p.MaxDistance > 0 && p.Traveled >= p.MaxDistance
}
