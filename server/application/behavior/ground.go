package behavior

import (
	"time"

	"skirmish/server/application/world"
)

// Ground は巡回→追跡の地上敵です。射撃は状態を持たず、条件を満たした tick に撃ちます。
// 追跡はダメージを受けるか、出現時に Chasing が立っていると始まり、解除されません。
type Ground struct{}

func (Ground) Update(ctx *Context, e *world.Entity) {
	candidates := ctx.World.Candidates()
	if !e.Frozen(ctx.Now) {
		target, ok := world.Nearest(e.Position, candidates)
		if e.Chasing && ok {
			moveToward(e, target.Position, e.Speed, ctx.Dt)
		} else {
			patrol(e, ctx.Dt)
		}
		settle(ctx, e)
	}
	tryFire(ctx, e, candidates)
}

// Flying は Ground の水平移動に上下の飛行サイクルを重ねます。
type Flying struct{}

func (Flying) Update(ctx *Context, e *world.Entity) {
	Ground{}.Update(ctx, e)

	if e.Flight == nil {
		e.Flight = &world.Flight{GroundY: e.Position.Y}
	}
	f := e.Flight
	if f.Phase == world.FlightGrounded && ctx.Rand != nil && ctx.Rand.Float64() < ctx.Config.FlightChance {
		f.Begin(ctx.Now, f.GroundY+flightHeight(ctx), flightDuration(ctx))
	}
	e.Position.Y = f.Advance(ctx.Now)
}

func flightHeight(ctx *Context) float64 {
	c := ctx.Config
	return c.FlightMinHeight + ctx.Rand.Float64()*(c.FlightMaxHeight-c.FlightMinHeight)
}

func flightDuration(ctx *Context) time.Duration {
	c := ctx.Config
	span := c.FlightMaxDuration - c.FlightMinDuration
	if span <= 0 {
		return c.FlightMinDuration
	}
	return c.FlightMinDuration + time.Duration(ctx.Rand.Int64N(int64(span)+1))
}

// Pursuit は持ち場に繋がれた近接ボスです。射程内なら全速で追い、
// 外れたら持ち場から閾値以上離れているときだけ半分の速度で戻ります。
type Pursuit struct{}

func (Pursuit) Update(ctx *Context, e *world.Entity) {
	candidates := ctx.World.Candidates()
	if !e.Frozen(ctx.Now) {
		target, ok := world.Nearest(e.Position, candidates)
		switch {
		case ok && target.Distance < e.ChaseRange:
			moveToward(e, target.Position, e.Speed, ctx.Dt)
		case e.Position.HorizontalDist(e.Home) > e.HomeThreshold:
			moveToward(e, e.Home, e.Speed*homeSpeedFactor(ctx), ctx.Dt)
		}
		settle(ctx, e)
	}
	tryFire(ctx, e, candidates)
}

func homeSpeedFactor(ctx *Context) float64 {
	if ctx.Config.HomeSpeedFactor > 0 {
		return ctx.Config.HomeSpeedFactor
	}
	return 0.5
}
