// Package spawn は予告付きの出現を扱います。出現の時期と場所を決めるのは権威側だけで、
// 決定は entitySpawned 1 通で伝わり、各ピアは受信時刻から自分のタイマーで実体化します。
package spawn

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"skirmish/server/application/clock"
	"skirmish/server/application/replication"
	"skirmish/server/application/world"
)

//go:generate go tool mockgen -destination=./mocks/visuals_mock.go -package=mocks . Visuals

// Visuals は予告と実体化の表示レイヤです。
type Visuals interface {
	// Warning は予告中の毎 tick 呼ばれます。progress は 0 から 1 へ増えます。
	Warning(spawnID uint32, pos world.Vec3, progress float64)
	Materialize(e *world.Entity)
	Remove(id world.EntityID)
}

var ErrMissingDependency = errors.New("spawn: missing dependency")

type Entry struct {
	Kind   world.Kind
	Weight int
	Params replication.SpawnParams
}

type Config struct {
	Warning           time.Duration
	InitialInterval   time.Duration
	MinInterval       time.Duration
	IntervalDecrement time.Duration
	MaxConcurrent     int
	MaxLifetime       int
	TTL               time.Duration
	Jitter            float64
	RiseDuration      time.Duration
	RiseDepth         float64
	Points            []world.Vec3
	Table             []Entry
	TurretLifetime    time.Duration
}

type Deps struct {
	World     *world.World
	Scheduler *clock.Scheduler
	Authority *replication.Authority
	Outbox    *replication.Outbox
	Visuals   Visuals
	Templates *world.Templates
	Terrain   world.HeightFunc
	Rand      *rand.Rand
}

// Telegraph は予告中の出現です。
type Telegraph struct {
	Event     replication.EntitySpawned
	CreatedAt time.Time
}

func (t *Telegraph) Due() time.Time { return t.CreatedAt.Add(t.Event.Warning) }

func (t *Telegraph) Progress(now time.Time) float64 {
	if t.Event.Warning <= 0 {
		return 1
	}
	p := float64(now.Sub(t.CreatedAt)) / float64(t.Event.Warning)
	return math.Min(1, math.Max(0, p))
}

type Controller struct {
	cfg       Config
	world     *world.World
	sched     *clock.Scheduler
	auth      *replication.Authority
	out       *replication.Outbox
	visuals   Visuals
	templates *world.Templates
	terrain   world.HeightFunc
	rng       *rand.Rand

	pending map[uint32]*Telegraph
	seen    map[uint32]struct{}
	live    map[uint32]world.EntityID

	nextSpawnID  uint32
	floor        uint32
	lifetime     int
	interval     time.Duration
	lastDecision time.Time
	started      bool
}

func NewController(deps Deps, cfg Config) (*Controller, error) {
	if deps.World == nil || deps.Scheduler == nil || deps.Authority == nil || deps.Outbox == nil {
		return nil, ErrMissingDependency
	}
	if deps.Visuals == nil || deps.Templates == nil || deps.Rand == nil {
		return nil, ErrMissingDependency
	}
	return &Controller{
		cfg:       cfg,
		world:     deps.World,
		sched:     deps.Scheduler,
		auth:      deps.Authority,
		out:       deps.Outbox,
		visuals:   deps.Visuals,
		templates: deps.Templates,
		terrain:   deps.Terrain,
		rng:       deps.Rand,
		pending:   make(map[uint32]*Telegraph),
		seen:      make(map[uint32]struct{}),
		live:      make(map[uint32]world.EntityID),
		interval:  cfg.InitialInterval,
	}, nil
}

// Update は寿命切れの撤去、(権威側のみ) 出現判断、予告表示の更新を行います。
func (c *Controller) Update(now time.Time) {
	c.expire(now)
	if c.auth.CanMutate() {
		c.decide(now)
	}
	for _, id := range c.pendingIDs() {
		t := c.pending[id]
		c.visuals.Warning(id, t.Event.Position, t.Progress(now))
	}
}

func (c *Controller) decide(now time.Time) {
	if len(c.cfg.Points) == 0 || len(c.cfg.Table) == 0 {
		return
	}
	if !c.started {
		c.started = true
		c.lastDecision = now
		return
	}
	if now.Sub(c.lastDecision) < c.interval {
		return
	}
	c.lastDecision = now

	// 上限を超える試行は待たせずに捨てる
	if c.cfg.MaxLifetime > 0 && c.lifetime >= c.cfg.MaxLifetime {
		return
	}
	if c.cfg.MaxConcurrent > 0 && c.Active() >= c.cfg.MaxConcurrent {
		return
	}

	entry := c.pick()
	c.Begin(now, entry.Kind, c.spawnPoint(), entry.Params)
	c.interval = max(c.cfg.MinInterval, c.interval-c.cfg.IntervalDecrement)
}

func (c *Controller) pick() Entry {
	total := 0
	for _, e := range c.cfg.Table {
		total += e.Weight
	}
	r := c.rng.IntN(total)
	for _, e := range c.cfg.Table {
		if r < e.Weight {
			return e
		}
		r -= e.Weight
	}
	return c.cfg.Table[len(c.cfg.Table)-1]
}

func (c *Controller) spawnPoint() world.Vec3 {
	p := c.cfg.Points[c.rng.IntN(len(c.cfg.Points))]
	if c.cfg.Jitter > 0 {
		angle := c.rng.Float64() * 2 * math.Pi
		dist := c.rng.Float64() * c.cfg.Jitter
		p.X += math.Cos(angle) * dist
		p.Z += math.Sin(angle) * dist
	}
	if c.terrain != nil {
		p.Y = c.terrain(p.X, p.Z)
	}
	return p
}

// Begin は権威側で出現を開始し entitySpawned を送出します。権限がなければ false。
// 上限の判定は呼び出し側の責務です。
func (c *Controller) Begin(now time.Time, kind world.Kind, pos world.Vec3, params replication.SpawnParams) (uint32, bool) {
	if !c.auth.CanMutate() || !kind.Valid() {
		return 0, false
	}
	c.lifetime++
	return c.begin(now, kind, pos, params, c.cfg.Warning)
}

// PlaceTurret は予告なしでタレットを設置します。寿命は TurretLifetime です。
func (c *Controller) PlaceTurret(now time.Time, pos world.Vec3) (uint32, bool) {
	if !c.auth.CanMutate() {
		return 0, false
	}
	if c.terrain != nil {
		pos.Y = c.terrain(pos.X, pos.Z)
	}
	return c.begin(now, world.KindTurret, pos, replication.SpawnParams{TTL: c.cfg.TurretLifetime}, 0)
}

func (c *Controller) begin(now time.Time, kind world.Kind, pos world.Vec3, params replication.SpawnParams, warning time.Duration) (uint32, bool) {
	c.nextSpawnID++
	ev := replication.EntitySpawned{
		Kind:     kind,
		Position: pos,
		SpawnID:  c.nextSpawnID,
		Warning:  warning,
		Params:   params,
	}
	c.out.Push(ev)
	c.start(now, ev)
	return ev.SpawnID, true
}

// Receive は他ピアの決定を受けて予告を開始します。同じ spawnID の 2 回目以降は無視して false を返します。
func (c *Controller) Receive(now time.Time, ev replication.EntitySpawned) bool {
	if _, dup := c.seen[ev.SpawnID]; dup || ev.SpawnID <= c.floor || !ev.Kind.Valid() {
		return false
	}
	if ev.SpawnID > c.nextSpawnID {
		c.nextSpawnID = ev.SpawnID
	}
	c.start(now, ev)
	return true
}

func (c *Controller) start(now time.Time, ev replication.EntitySpawned) {
	t := &Telegraph{Event: ev, CreatedAt: now}
	c.pending[ev.SpawnID] = t
	c.seen[ev.SpawnID] = struct{}{}
	if ev.Warning <= 0 {
		c.materialize(now, ev.SpawnID)
		return
	}
	id := ev.SpawnID
	c.sched.At(t.Due(), func(at time.Time) {
		c.materialize(at, id)
	})
}

func (c *Controller) materialize(now time.Time, spawnID uint32) {
	t, ok := c.pending[spawnID]
	if !ok {
		return
	}
	delete(c.pending, spawnID)

	ev := t.Event
	e := c.templates.For(ev.Kind).Build(ev.Position)
	e.ID = world.SpawnEntityID(spawnID)
	e.SpawnID = spawnID
	e.SpawnedAt = now
	e.Chasing = ev.Params.Aggro
	if ev.Params.Scale > 0 {
		e.Scale = ev.Params.Scale
	}
	switch {
	case ev.Params.TTL > 0:
		e.TTL = ev.Params.TTL
	case e.TTL == 0:
		e.TTL = c.cfg.TTL
	}
	if ev.Params.Rise && c.cfg.RiseDuration > 0 {
		rest := e.Position.Y
		e.Position.Y = rest - c.cfg.RiseDepth
		e.Rising = &world.Rise{FromY: e.Position.Y, ToY: rest, Start: now, Duration: c.cfg.RiseDuration}
	}
	if !c.world.PutEntity(e) {
		return
	}
	c.live[spawnID] = e.ID
	c.visuals.Materialize(e)
}

// expire は TTL を過ぎた出現物を撤去し entityDespawned を送出します。
// 撤去は両ピアで独立に起きるので、後から届いた despawn は受信側で無視されます。
func (c *Controller) expire(now time.Time) {
	for _, sid := range c.liveIDs() {
		id := c.live[sid]
		e, ok := c.world.Entity(id)
		if !ok {
			delete(c.live, sid)
			continue
		}
		if !e.Alive || !e.Expired(now) {
			continue
		}
		c.world.RemoveEntity(id)
		delete(c.live, sid)
		c.visuals.Remove(id)
		c.out.Push(replication.EntityDespawned{ID: id})
	}
}

// Active は予告中と実体化済みの出現数です。タレットは数えません。
func (c *Controller) Active() int {
	n := 0
	for _, t := range c.pending {
		if t.Event.Kind != world.KindTurret {
			n++
		}
	}
	for _, id := range c.live {
		if e, ok := c.world.Entity(id); ok && e.Kind != world.KindTurret {
			n++
		}
	}
	return n
}

// Capture は予告中の出現 (残り時間に直した予告長) と計数を snap に書き込みます。
func (c *Controller) Capture(now time.Time, snap *replication.Snapshot) {
	for _, id := range c.pendingIDs() {
		t := c.pending[id]
		ev := t.Event
		ev.Warning = max(0, t.Due().Sub(now))
		snap.Pending = append(snap.Pending, ev)
	}
	snap.NextSpawnID = c.nextSpawnID
	snap.Lifetime = c.lifetime
	snap.Interval = c.interval
}

// Restore は snap の状態に置き換えます。World とスケジューラの初期化は呼び出し側が先に済ませます。
// snap 以前の spawnID は以後すべて重複として扱います。
func (c *Controller) Restore(now time.Time, snap replication.Snapshot) {
	c.pending = make(map[uint32]*Telegraph)
	c.seen = make(map[uint32]struct{})
	c.live = make(map[uint32]world.EntityID)
	for _, es := range snap.Entities {
		if es.SpawnID != 0 {
			c.seen[es.SpawnID] = struct{}{}
			c.live[es.SpawnID] = es.ID
		}
	}
	c.nextSpawnID = snap.NextSpawnID
	c.floor = snap.NextSpawnID
	c.lifetime = snap.Lifetime
	if snap.Interval > 0 {
		c.interval = snap.Interval
	}
	for _, ev := range snap.Pending {
		c.start(now, ev)
	}
}

func (c *Controller) Pending() int { return len(c.pending) }

func (c *Controller) Lifetime() int { return c.lifetime }

func (c *Controller) Interval() time.Duration { return c.interval }

func (c *Controller) pendingIDs() []uint32 {
	ids := make([]uint32, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Controller) liveIDs() []uint32 {
	ids := make([]uint32, 0, len(c.live))
	for id := range c.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
