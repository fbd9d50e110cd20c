// Package behavior は種別ごとの状態機械です。各 tick でエンティティを進め、
// 射撃と接触ダメージを Intents として積みます。弾の生成とダメージ適用は呼び出し側が行います。
package behavior

import (
	"math/rand/v2"
	"time"

	"skirmish/server/application/world"
)

// Config は状態機械の調整値です。
type Config struct {
	FlightChance      float64
	FlightMinHeight   float64
	FlightMaxHeight   float64
	FlightMinDuration time.Duration
	FlightMaxDuration time.Duration

	ContactRadius   float64
	ContactCooldown time.Duration
	ContactDamage   int

	HomeSpeedFactor float64
}

type FireIntent struct {
	Shooter world.EntityID
	Owner   world.Owner
	Origin  world.Vec3
	Target  world.Vec3
	Weapon  world.Weapon
}

type ContactIntent struct {
	Entity world.EntityID
	Slot   world.AvatarSlot
	Damage int
}

type Intents struct {
	Fires    []FireIntent
	Contacts []ContactIntent
}

func (i *Intents) Reset() {
	i.Fires = i.Fires[:0]
	i.Contacts = i.Contacts[:0]
}

// Context は 1 tick 分の入力です。ワールドは参照で渡され、状態機械はそれを直接更新します。
type Context struct {
	World   *world.World
	Now     time.Time
	Dt      time.Duration
	Rand    *rand.Rand
	Terrain world.HeightFunc
	Config  Config
	Intents *Intents
}

// Behavior は種別 1 つ分の更新処理です。
type Behavior interface {
	Update(ctx *Context, e *world.Entity)
}

var registry = [world.KindCount]Behavior{
	world.KindPatroller:      Ground{},
	world.KindRangedGuardian: Ground{},
	world.KindCaster:         Ground{},
	world.KindHeavy:          Ground{},
	world.KindFlyingBoss:     Flying{},
	world.KindPursuitBoss:    Pursuit{},
	world.KindTurret:         Turret{},
}

// For は種別の Behavior を返します。未知の種別は nil です。
func For(k world.Kind) Behavior {
	if !k.Valid() {
		return nil
	}
	return registry[k]
}

// Step は全ての生存エンティティ (死亡演出で隠れたものを除く) を ID 順に 1 回ずつ進め、最後に接触ダメージを判定します。
func Step(ctx *Context) {
	for _, e := range ctx.World.Entities() {
		if !e.Alive || e.Hidden {
			continue
		}
		if e.Rising != nil {
			y, done := e.Rising.Advance(ctx.Now)
			e.Position.Y = y
			if done {
				e.Rising = nil
			}
			continue
		}
		b := For(e.Kind)
		if b == nil {
			continue
		}
		b.Update(ctx, e)
	}
	contact(ctx)
}
