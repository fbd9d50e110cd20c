package behavior

import (
	"math"

	"skirmish/server/application/world"
)

// Turret は射程内で最も近い敵に向けて少しずつ旋回し、クールダウンごとに撃ちます。
// 寿命による撤去はスポーンコントローラが TTL として扱います。
type Turret struct{}

func (Turret) Update(ctx *Context, e *world.Entity) {
	target, ok := nearestHostile(ctx.World, e.Position, e.Weapon.Range)
	if !ok {
		return
	}
	want := target.Position.Sub(e.Position).Yaw()
	e.Facing = rotateToward(e.Facing, want, e.TurnRate*ctx.Dt.Seconds())

	w := e.Weapon
	if !w.Armed() || e.Frozen(ctx.Now) || ctx.Now.Sub(e.LastFire) <= w.Interval {
		return
	}
	ctx.Intents.Fires = append(ctx.Intents.Fires, FireIntent{
		Shooter: e.ID,
		Owner:   world.OwnerTurret,
		Origin:  e.Position,
		Target:  target.Position,
		Weapon:  w,
	})
	e.LastFire = ctx.Now
}

// nearestHostile は maxDist 以内で最も近い生存中の敵 (ボス含む) を返します。同距離は ID の小さい方です。
func nearestHostile(w *world.World, pos world.Vec3, maxDist float64) (*world.Entity, bool) {
	var best *world.Entity
	bestDist := math.Inf(1)
	for _, e := range w.Entities() {
		if !e.Alive || e.Hidden || !e.Category.Targetable() {
			continue
		}
		d := pos.Dist(e.Position)
		if d > maxDist || d >= bestDist {
			continue
		}
		best, bestDist = e, d
	}
	return best, best != nil
}
