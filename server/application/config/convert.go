package config

import (
	"skirmish/server/application/loot"
	"skirmish/server/application/world"
)

func (w WeaponSpec) Weapon() world.Weapon {
	return world.Weapon{
		Projectile:  w.Projectile,
		Interval:    w.Interval,
		Range:       w.Range,
		Damage:      w.Damage,
		Speed:       w.Speed,
		Radius:      w.Radius,
		MaxDistance: w.MaxDistance,
		Freeze:      w.Freeze,
	}
}

// Templates は検証済みのレベルから種別テンプレート表を作ります。
func (l *Level) Templates() world.Templates {
	var ts world.Templates
	for name, ks := range l.Kinds {
		k, err := world.ParseKind(name)
		if err != nil {
			continue
		}
		cat, _ := world.ParseCategory(ks.Category)
		ts[k] = world.Template{
			Kind:          k,
			Category:      cat,
			Health:        ks.Health,
			Speed:         ks.Speed,
			Radius:        ks.Radius,
			Scale:         ks.Scale,
			PatrolRadius:  ks.PatrolRadius,
			ChaseRange:    ks.ChaseRange,
			HomeThreshold: ks.HomeThreshold,
			TurnRate:      ks.TurnRate,
			LootEligible:  ks.LootEligible,
			Weapon:        ks.Weapon.Weapon(),
			TTL:           ks.TTL,
		}
	}
	return ts
}

// Roster はレベル初期配置を並び順どおりに組み立てます。ID は World.AddEntity が振ります。
func (l *Level) Roster(ts world.Templates) []*world.Entity {
	out := make([]*world.Entity, 0, len(l.Entities))
	for _, es := range l.Entities {
		k, err := world.ParseKind(es.Kind)
		if err != nil {
			continue
		}
		e := ts.For(k).Build(es.Position)
		if es.Patrol != nil {
			e.Patrol = world.PatrolBounds{Left: es.Patrol.Left, Right: es.Patrol.Right}
		}
		if es.Category != "" {
			if c, err := world.ParseCategory(es.Category); err == nil {
				e.Category = c
			}
		}
		if es.Scale > 0 {
			e.Scale = es.Scale
		}
		e.Chasing = es.Aggro
		out = append(out, e)
	}
	return out
}

func (l *Level) LootTable() loot.Table {
	t := loot.Table{Min: l.Loot.Min, Max: l.Loot.Max, Radius: l.Loot.Radius}
	for _, it := range l.Loot.Items {
		t.Items = append(t.Items, loot.Item{Kind: it.Kind, Weight: it.Weight})
	}
	return t
}

// Multiplier は発射元に応じたダメージ倍率です。敵弾は 1 です。
func (d DamageSpec) Multiplier(o world.Owner) float64 {
	switch o {
	case world.OwnerLocal:
		return d.Local
	case world.OwnerRemote:
		return d.Remote
	case world.OwnerSplit:
		return d.Split
	case world.OwnerTurret:
		return d.Turret
	default:
		return 1
	}
}

// Weapons は弾種名から武器を引く表です。受信した射撃イベントの再現に使います。
func (l *Level) Weapons() map[string]world.Weapon {
	out := map[string]world.Weapon{l.Avatar.Weapon.Projectile: l.Avatar.Weapon.Weapon()}
	for _, k := range world.Kinds() {
		ks := l.Kinds[k.String()]
		if ks.Weapon.Projectile != "" {
			if _, ok := out[ks.Weapon.Projectile]; !ok {
				out[ks.Weapon.Projectile] = ks.Weapon.Weapon()
			}
		}
	}
	return out
}
