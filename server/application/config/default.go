package config

import (
	"math"
	"time"

	"skirmish/server/application/world"
)

const DefaultSnapshotInterval = 10 * time.Second

// Default は全項目に既定値を入れたレベルを返します。初期配置は空です。
func Default() *Level {
	return &Level{
		Name:             "default",
		Tick:             time.Second / 60,
		SnapshotInterval: DefaultSnapshotInterval,
		Bounds: world.AABB{
			Min: world.Vec3{X: -100, Y: -20, Z: -100},
			Max: world.Vec3{X: 100, Y: 60, Z: 100},
		},
		Kinds: defaultKinds(),
		Avatar: AvatarSpec{
			Health: 10,
			Radius: 0.5,
			Weapon: WeaponSpec{Projectile: "arrow", Interval: 250 * time.Millisecond, Damage: 1, Speed: 24, Radius: 0.3, MaxDistance: 30},
		},
		Spawn: SpawnSpec{
			Warning:           1500 * time.Millisecond,
			InitialInterval:   8 * time.Second,
			MinInterval:       3 * time.Second,
			IntervalDecrement: 500 * time.Millisecond,
			MaxConcurrent:     6,
			TTL:               90 * time.Second,
			Jitter:            2,
			RiseDuration:      800 * time.Millisecond,
			RiseDepth:         2,
			Points: []world.Vec3{
				{X: 20, Z: 20},
				{X: -20, Z: 20},
				{X: 0, Z: -25},
			},
			Table: []SpawnEntry{
				{Kind: "patroller", Weight: 5},
				{Kind: "ranged-guardian", Weight: 3, Aggro: true},
				{Kind: "caster", Weight: 2},
				{Kind: "heavy", Weight: 1, Rise: true},
			},
		},
		Turret:  TurretSpec{Lifetime: 30 * time.Second},
		Flight:  FlightSpec{Chance: 0.004, MinHeight: 6, MaxHeight: 12, MinDuration: 3 * time.Second, MaxDuration: 6 * time.Second},
		Contact: ContactSpec{Radius: 1.5, Cooldown: time.Second, Damage: 1},
		Death:   DeathSpec{Bursts: 4, Stagger: 120 * time.Millisecond, Spread: 1.5},
		Loot: LootSpec{
			Min:    1,
			Max:    4,
			Radius: 1.5,
			Items: []LootItem{
				{Kind: "coin", Weight: 6},
				{Kind: "gem", Weight: 3},
				{Kind: "heart", Weight: 1},
			},
		},
		Damage: DamageSpec{Local: 1, Remote: 1, Split: 1, Turret: 1},
	}
}

func defaultKinds() map[string]KindSpec {
	return map[string]KindSpec{
		"patroller": {
			Category: "hostile", Health: 3, Speed: 2, Radius: 0.6, PatrolRadius: 4,
		},
		"ranged-guardian": {
			Category: "hostile", Health: 4, Speed: 1.5, Radius: 0.6, PatrolRadius: 3,
			Weapon: WeaponSpec{Projectile: "bolt", Interval: 2 * time.Second, Range: 12, Damage: 1, Speed: 14, Radius: 0.25, MaxDistance: 20},
		},
		"caster": {
			Category: "hostile", Health: 3, Speed: 1.2, Radius: 0.5, PatrolRadius: 2,
			Weapon: WeaponSpec{Projectile: "orb", Interval: 3 * time.Second, Range: 14, Damage: 1, Speed: 9, Radius: 0.4, MaxDistance: 18},
		},
		"heavy": {
			Category: "hostile", Health: 8, Speed: 0.8, Radius: 1, Scale: 1.5, PatrolRadius: 2, LootEligible: true,
		},
		"flying-boss": {
			Category: "boss", Health: 30, Speed: 1.5, Radius: 1.5, Scale: 2, PatrolRadius: 6, LootEligible: true,
			Weapon: WeaponSpec{Projectile: "fireball", Interval: 1500 * time.Millisecond, Range: 18, Damage: 2, Speed: 12, Radius: 0.5, MaxDistance: 25},
		},
		"pursuit-boss": {
			Category: "boss", Health: 25, Speed: 3, Radius: 1.2, Scale: 1.8, ChaseRange: 10, HomeThreshold: 0.5, LootEligible: true,
		},
		"turret": {
			Category: "structure", Health: 10, Radius: 0.5, TurnRate: math.Pi,
			Weapon: WeaponSpec{Projectile: "dart", Interval: time.Second, Range: 15, Damage: 1, Speed: 20, Radius: 0.2, MaxDistance: 20},
		},
	}
}
