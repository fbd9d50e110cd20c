package world

import "time"

// Template は種別ごとの初期ステータスです。レベル設定から組み立てます。
type Template struct {
	Kind          Kind
	Category      Category
	Health        int
	Speed         float64
	Radius        float64
	Scale         float64
	PatrolRadius  float64
	ChaseRange    float64
	HomeThreshold float64
	TurnRate      float64
	LootEligible  bool
	Weapon        Weapon
	TTL           time.Duration
}

// Build は pos に配置した生存状態のエンティティを返します。ID は呼び出し側が決めます。
func (t Template) Build(pos Vec3) *Entity {
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	e := &Entity{
		Kind:          t.Kind,
		Category:      t.Category,
		Position:      pos,
		Speed:         t.Speed,
		Scale:         scale,
		Radius:        t.Radius,
		Alive:         true,
		Health:        t.Health,
		MaxHealth:     t.Health,
		Patrol:        PatrolBounds{Left: pos.X - t.PatrolRadius, Right: pos.X + t.PatrolRadius},
		Dir:           1,
		Home:          pos,
		ChaseRange:    t.ChaseRange,
		HomeThreshold: t.HomeThreshold,
		TurnRate:      t.TurnRate,
		Weapon:        t.Weapon,
		LootEligible:  t.LootEligible,
		TTL:           t.TTL,
	}
	if t.Kind == KindFlyingBoss {
		e.Flight = &Flight{GroundY: pos.Y}
	}
	return e
}

// Templates は種別で引く固定長の表です。
type Templates [KindCount]Template

func (ts *Templates) For(k Kind) Template {
	if !k.Valid() {
		return Template{}
	}
	return ts[k]
}
