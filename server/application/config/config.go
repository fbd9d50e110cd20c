// Package config はレベルとスポーン設定を読み込みます。
// 読み込み時に既定値を補い、検証を済ませるので、利用側は欠損を気にせず参照できます。
package config

import (
	"time"

	"skirmish/server/application/world"
)

type Level struct {
	Name             string        `yaml:"name" json:"name"`
	Tick             time.Duration `yaml:"tick" json:"tick" jsonschema:"description=simulation tick period"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval" json:"snapshotInterval" jsonschema:"description=keyframe snapshot cadence; 0 disables"`

	Bounds    world.AABB   `yaml:"bounds" json:"bounds"`
	Obstacles []world.AABB `yaml:"obstacles" json:"obstacles,omitempty"`

	Kinds    map[string]KindSpec `yaml:"kinds" json:"kinds"`
	Entities []EntitySpec        `yaml:"entities" json:"entities,omitempty"`

	Avatar  AvatarSpec  `yaml:"avatar" json:"avatar"`
	Spawn   SpawnSpec   `yaml:"spawn" json:"spawn"`
	Turret  TurretSpec  `yaml:"turret" json:"turret"`
	Flight  FlightSpec  `yaml:"flight" json:"flight"`
	Contact ContactSpec `yaml:"contact" json:"contact"`
	Death   DeathSpec   `yaml:"death" json:"death"`
	Loot    LootSpec    `yaml:"loot" json:"loot"`
	Damage  DamageSpec  `yaml:"damage" json:"damage"`
}

// KindSpec は種別ごとの初期ステータスです。キーは world.Kind の名前です。
type KindSpec struct {
	Category      string        `yaml:"category" json:"category" jsonschema:"enum=hostile,enum=boss,enum=extra-boss,enum=structure"`
	Health        int           `yaml:"health" json:"health" jsonschema:"minimum=1"`
	Speed         float64       `yaml:"speed" json:"speed"`
	Radius        float64       `yaml:"radius" json:"radius"`
	Scale         float64       `yaml:"scale" json:"scale,omitempty"`
	PatrolRadius  float64       `yaml:"patrolRadius" json:"patrolRadius,omitempty"`
	ChaseRange    float64       `yaml:"chaseRange" json:"chaseRange,omitempty"`
	HomeThreshold float64       `yaml:"homeThreshold" json:"homeThreshold,omitempty"`
	TurnRate      float64       `yaml:"turnRate" json:"turnRate,omitempty" jsonschema:"description=radians per second"`
	LootEligible  bool          `yaml:"loot" json:"loot,omitempty"`
	TTL           time.Duration `yaml:"ttl" json:"ttl,omitempty"`
	Weapon        WeaponSpec    `yaml:"weapon" json:"weapon,omitempty"`
}

type WeaponSpec struct {
	Projectile  string        `yaml:"projectile" json:"projectile,omitempty"`
	Interval    time.Duration `yaml:"interval" json:"interval,omitempty"`
	Range       float64       `yaml:"range" json:"range,omitempty"`
	Damage      int           `yaml:"damage" json:"damage,omitempty"`
	Speed       float64       `yaml:"speed" json:"speed,omitempty"`
	Radius      float64       `yaml:"radius" json:"radius,omitempty"`
	MaxDistance float64       `yaml:"maxDistance" json:"maxDistance,omitempty"`
	Freeze      time.Duration `yaml:"freeze" json:"freeze,omitempty"`
}

// EntitySpec はレベル初期配置の 1 体です。配置順に 1 から ID が振られます。
type EntitySpec struct {
	Kind     string      `yaml:"kind" json:"kind"`
	Position world.Vec3  `yaml:"position" json:"position"`
	Patrol   *PatrolSpec `yaml:"patrol" json:"patrol,omitempty"`
	Category string      `yaml:"category" json:"category,omitempty" jsonschema:"description=overrides the kind category"`
	Scale    float64     `yaml:"scale" json:"scale,omitempty"`
	Aggro    bool        `yaml:"aggro" json:"aggro,omitempty"`
}

type PatrolSpec struct {
	Left  float64 `yaml:"left" json:"left"`
	Right float64 `yaml:"right" json:"right"`
}

type AvatarSpec struct {
	Health int        `yaml:"health" json:"health"`
	Radius float64    `yaml:"radius" json:"radius"`
	Weapon WeaponSpec `yaml:"weapon" json:"weapon"`
}

type SpawnSpec struct {
	Warning           time.Duration `yaml:"warning" json:"warning"`
	InitialInterval   time.Duration `yaml:"initialInterval" json:"initialInterval"`
	MinInterval       time.Duration `yaml:"minInterval" json:"minInterval"`
	IntervalDecrement time.Duration `yaml:"intervalDecrement" json:"intervalDecrement"`
	MaxConcurrent     int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	MaxLifetime       int           `yaml:"maxLifetime" json:"maxLifetime" jsonschema:"description=0 means unlimited"`
	TTL               time.Duration `yaml:"ttl" json:"ttl"`
	Jitter            float64       `yaml:"jitter" json:"jitter"`
	RiseDuration      time.Duration `yaml:"riseDuration" json:"riseDuration"`
	RiseDepth         float64       `yaml:"riseDepth" json:"riseDepth"`
	Points            []world.Vec3  `yaml:"points" json:"points,omitempty"`
	Table             []SpawnEntry  `yaml:"table" json:"table,omitempty"`
}

type SpawnEntry struct {
	Kind   string  `yaml:"kind" json:"kind"`
	Weight int     `yaml:"weight" json:"weight" jsonschema:"minimum=1"`
	Aggro  bool    `yaml:"aggro" json:"aggro,omitempty"`
	Rise   bool    `yaml:"rise" json:"rise,omitempty"`
	Scale  float64 `yaml:"scale" json:"scale,omitempty"`
}

type TurretSpec struct {
	Lifetime time.Duration `yaml:"lifetime" json:"lifetime"`
}

type FlightSpec struct {
	Chance      float64       `yaml:"chance" json:"chance" jsonschema:"description=takeoff probability per grounded tick"`
	MinHeight   float64       `yaml:"minHeight" json:"minHeight"`
	MaxHeight   float64       `yaml:"maxHeight" json:"maxHeight"`
	MinDuration time.Duration `yaml:"minDuration" json:"minDuration"`
	MaxDuration time.Duration `yaml:"maxDuration" json:"maxDuration"`
}

type ContactSpec struct {
	Radius   float64       `yaml:"radius" json:"radius"`
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown"`
	Damage   int           `yaml:"damage" json:"damage"`
}

type DeathSpec struct {
	Bursts  int           `yaml:"bursts" json:"bursts"`
	Stagger time.Duration `yaml:"stagger" json:"stagger"`
	Spread  float64       `yaml:"spread" json:"spread"`
}

type LootSpec struct {
	Min    int        `yaml:"min" json:"min"`
	Max    int        `yaml:"max" json:"max"`
	Radius float64    `yaml:"radius" json:"radius"`
	Items  []LootItem `yaml:"items" json:"items,omitempty"`
}

type LootItem struct {
	Kind   string `yaml:"kind" json:"kind"`
	Weight int    `yaml:"weight" json:"weight"`
}

// DamageSpec は発射元ごとのダメージ倍率です。
type DamageSpec struct {
	Local  float64 `yaml:"local" json:"local"`
	Remote float64 `yaml:"remote" json:"remote"`
	Split  float64 `yaml:"split" json:"split"`
	Turret float64 `yaml:"turret" json:"turret"`
}
