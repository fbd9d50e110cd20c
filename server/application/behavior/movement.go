package behavior

import (
	"math"
	"time"

	"skirmish/server/application/world"
)

// moveToward は XZ 平面で target へ speed で進み、向きを合わせます。
// 行き過ぎません。向きが決まらなければ何もせず false を返します。
func moveToward(e *world.Entity, target world.Vec3, speed float64, dt time.Duration) bool {
	delta := world.Vec3{X: target.X - e.Position.X, Z: target.Z - e.Position.Z}
	dir, ok := delta.Normalize()
	if !ok {
		return false
	}
	step := speed * dt.Seconds()
	if remaining := delta.Len(); step > remaining {
		step = remaining
	}
	e.Position.X += dir.X * step
	e.Position.Z += dir.Z * step
	e.Facing = dir.Yaw()
	return true
}

// patrol は X 軸上を Left と Right の間で往復します。端で向きを反転します。
func patrol(e *world.Entity, dt time.Duration) {
	if e.Patrol.Left >= e.Patrol.Right {
		return
	}
	if e.Dir == 0 {
		e.Dir = 1
	}
	x := e.Position.X + e.Dir*e.Speed*dt.Seconds()
	switch {
	case x >= e.Patrol.Right:
		x = e.Patrol.Right
		e.Dir = -1
	case x <= e.Patrol.Left:
		x = e.Patrol.Left
		e.Dir = 1
	}
	e.Position.X = x
	e.Facing = world.Vec3{X: e.Dir}.Yaw()
}

// settle は地形の高さに合わせます。飛行ボスは地上高だけ更新し、高さは飛行サイクルに任せます。
func settle(ctx *Context, e *world.Entity) {
	if ctx.Terrain == nil {
		return
	}
	ground := ctx.Terrain(e.Position.X, e.Position.Z)
	if e.Flight != nil {
		e.Flight.GroundY = ground
		return
	}
	e.Position.Y = ground
}

// rotateToward は current から want へ最大 maxStep だけ回します。
func rotateToward(current, want, maxStep float64) float64 {
	diff := normalizeAngle(want - current)
	if math.Abs(diff) <= maxStep {
		return want
	}
	if diff > 0 {
		return normalizeAngle(current + maxStep)
	}
	return normalizeAngle(current - maxStep)
}

// normalizeAngle は (-π, π] に収めます。
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// tryFire は射程内で最も近い候補へ 1 発撃ちます。
// 凍結中は撃たず、クールダウンの起点も動かしません。
func tryFire(ctx *Context, e *world.Entity, candidates []world.Candidate) bool {
	w := e.Weapon
	if !w.Armed() || e.Frozen(ctx.Now) {
		return false
	}
	if ctx.Now.Sub(e.LastFire) <= w.Interval {
		return false
	}
	target, ok := world.NearestWithin(e.Position, candidates, w.Range)
	if !ok {
		return false
	}
	ctx.Intents.Fires = append(ctx.Intents.Fires, FireIntent{
		Shooter: e.ID,
		Owner:   world.OwnerHostile,
		Origin:  e.Position,
		Target:  target.Position,
		Weapon:  w,
	})
	e.LastFire = ctx.Now
	return true
}
