// Package combat は弾の移動と衝突、ダメージ適用、死亡演出を扱います。
package combat

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"skirmish/server/application/clock"
	"skirmish/server/application/loot"
	"skirmish/server/application/replication"
	"skirmish/server/application/world"
)

//go:generate go tool mockgen -destination=./mocks/collaborators_mock.go -package=mocks . Visuals,Audio

// Visuals は表示レイヤです。状態をこちらへ返すことはありません。
type Visuals interface {
	Impact(pos world.Vec3)
	Hide(id world.EntityID)
	Loot(drops []loot.Drop)
}

// Audio は投げっぱなしの効果音通知です。失敗は無視されます。
type Audio interface {
	Play(cue string)
}

const (
	CueFire  = "fire"
	CueHit   = "hit"
	CueHurt  = "hurt"
	CueDeath = "death"
)

var ErrMissingDependency = errors.New("combat: missing dependency")

type Config struct {
	DeathBursts  int
	DeathStagger time.Duration
	DeathSpread  float64
	Loot         loot.Table
	// Multiplier は発射元ごとのダメージ倍率です。nil なら常に 1 です。
	Multiplier func(world.Owner) float64
}

type Deps struct {
	World     *world.World
	Scheduler *clock.Scheduler
	Authority *replication.Authority
	Outbox    *replication.Outbox
	Visuals   Visuals
	Audio     Audio
	Rand      *rand.Rand
}

type Resolver struct {
	world   *world.World
	sched   *clock.Scheduler
	auth    *replication.Authority
	out     *replication.Outbox
	visuals Visuals
	audio   Audio
	rng     *rand.Rand
	cfg     Config

	kills int
}

func NewResolver(deps Deps, cfg Config) (*Resolver, error) {
	if deps.World == nil || deps.Scheduler == nil || deps.Authority == nil || deps.Outbox == nil {
		return nil, ErrMissingDependency
	}
	if deps.Visuals == nil || deps.Audio == nil || deps.Rand == nil {
		return nil, ErrMissingDependency
	}
	return &Resolver{
		world:   deps.World,
		sched:   deps.Scheduler,
		auth:    deps.Authority,
		out:     deps.Outbox,
		visuals: deps.Visuals,
		audio:   deps.Audio,
		rng:     deps.Rand,
		cfg:     cfg,
	}, nil
}

// Fire は origin から target へ弾を 1 発生成します。向きが決まらなければ何もしません。
func (r *Resolver) Fire(owner world.Owner, shooter world.EntityID, origin, target world.Vec3, w world.Weapon) (*world.Projectile, bool) {
	p, ok := world.NewProjectile(owner, shooter, origin, target, w)
	if !ok {
		return nil, false
	}
	r.world.AddProjectile(p)
	r.audio.Play(CueFire)
	return p, true
}

// Step は全ての弾を dt だけ進め、射程切れ・範囲外・命中した弾を取り除きます。
func (r *Resolver) Step(now time.Time, dt time.Duration) {
	for _, p := range r.world.Projectiles() {
		p.Advance(dt)
		// 射程ちょうどで重なった弾も命中として扱う
		if r.collide(now, p) || p.Spent() || !r.world.InBounds(p.Position) {
			r.world.RemoveProjectile(p.ID)
		}
	}
}

// collide は固定の優先順で判定し、最初に当たった対象で弾を消費します。
func (r *Resolver) collide(now time.Time, p *world.Projectile) bool {
	if p.Owner.Friendly() {
		for _, c := range world.CollisionOrder {
			for _, e := range r.world.Live(c) {
				if e.Hidden || e.ID == p.Shooter {
					continue
				}
				if p.Position.Dist(e.Position) <= p.Radius+e.CollisionRadius() {
					r.hitEntity(now, p, e)
					return true
				}
			}
		}
	} else {
		for slot := world.AvatarSlot(0); slot < world.AvatarSlotCount; slot++ {
			a := r.world.Avatar(slot)
			if !a.Targetable() {
				continue
			}
			if p.Position.Dist(a.Position) <= p.Radius+a.Radius {
				r.visuals.Impact(p.Position)
				r.audio.Play(CueHurt)
				if r.auth.CanMutate() {
					a.Damage(p.Damage)
				}
				return true
			}
		}
	}
	for _, o := range r.world.Obstacles {
		if o.IntersectsSphere(p.Position, p.Radius) {
			r.visuals.Impact(p.Position)
			return true
		}
	}
	return false
}

// hitEntity は見た目の反応を常に出し、体力の変更は権限がある場合だけ行います。
func (r *Resolver) hitEntity(now time.Time, p *world.Projectile, e *world.Entity) {
	r.visuals.Impact(p.Position)
	r.audio.Play(CueHit)
	e.Chasing = true
	if p.Freeze > 0 {
		e.Freeze(now.Add(p.Freeze))
	}
	if !r.auth.CanMutate() {
		return
	}
	if e.ApplyDamage(r.damage(p)) {
		r.kill(now, e)
	}
}

func (r *Resolver) damage(p *world.Projectile) int {
	if r.cfg.Multiplier == nil || p.Damage <= 0 {
		return p.Damage
	}
	m := r.cfg.Multiplier(p.Owner)
	if m <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(p.Damage)*m)))
}

// kill は死亡したエンティティの演出を予約し、演出完了後に取り除きます。
func (r *Resolver) kill(now time.Time, e *world.Entity) {
	r.kills++
	pos := e.Position
	e.Hidden = true
	r.visuals.Hide(e.ID)
	r.audio.Play(CueDeath)

	r.out.Push(replication.ExplosionOccurred{Position: pos, Loot: e.LootEligible})
	r.PlayDeath(now, pos, e.LootEligible)

	id := e.ID
	r.sched.At(now.Add(r.SequenceDuration()), func(time.Time) {
		if r.world.RemoveEntity(id) {
			r.out.Push(replication.EntityDespawned{ID: id})
		}
	})
}

// PlayDeath は死亡位置の周囲に時間差の爆発を予約し、必要なら戦利品を出します。
// 参加側は explosionOccurred を受け取ったときにこれだけを実行します。
func (r *Resolver) PlayDeath(now time.Time, pos world.Vec3, withLoot bool) {
	for i := range r.cfg.DeathBursts {
		at := pos.Add(r.burstOffset())
		r.sched.At(now.Add(time.Duration(i+1)*r.cfg.DeathStagger), func(time.Time) {
			r.visuals.Impact(at)
		})
	}
	if !withLoot {
		return
	}
	if drops := loot.Scatter(pos, r.cfg.Loot); len(drops) > 0 {
		r.visuals.Loot(drops)
	}
}

func (r *Resolver) burstOffset() world.Vec3 {
	s := r.cfg.DeathSpread
	return world.Vec3{
		X: (r.rng.Float64()*2 - 1) * s,
		Y: r.rng.Float64() * s,
		Z: (r.rng.Float64()*2 - 1) * s,
	}
}

// SequenceDuration は死亡演出の長さです。
func (r *Resolver) SequenceDuration() time.Duration {
	return time.Duration(r.cfg.DeathBursts) * r.cfg.DeathStagger
}

func (r *Resolver) Kills() int { return r.kills }
