// Package application は 1 ピア分の戦闘シミュレーションと、それをルームや接続に載せる層です。
package application

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"skirmish/server/application/behavior"
	"skirmish/server/application/clock"
	"skirmish/server/application/combat"
	"skirmish/server/application/config"
	"skirmish/server/application/replication"
	"skirmish/server/application/spawn"
	"skirmish/server/application/world"
	"skirmish/utils"
)

const (
	// maxTickStep は停止明けなどで 1 tick に進める時間の上限です。
	maxTickStep = 100 * time.Millisecond
	// explosionMatchRadius は explosionOccurred の位置と手元のエンティティを対応させる距離です。
	explosionMatchRadius = 2.0
)

type Options struct {
	Level   *config.Level
	Mode    replication.Mode
	Clock   clock.Clock
	Visuals Visuals
	Audio   combat.Audio
	Terrain world.HeightFunc
	Seed    uint64
}

// Stats はログ用の集計値です。
type Stats struct {
	Ticks     uint64
	Kills     int
	Stale     int // 無視した受信イベント
	Dropped   int // 送出権がなく捨てたイベント
	Entities  int
	Active    int
	Connected bool
}

// Simulation は 1 ピアが持つ戦闘シミュレーションです。
// そのピアの tick ループ 1 本からだけ呼ばれる前提でロックを持ちません。
type Simulation struct {
	level     *config.Level
	clock     clock.Clock
	world     *world.World
	sched     *clock.Scheduler
	auth      *replication.Authority
	out       *replication.Outbox
	templates world.Templates
	weapons   map[string]world.Weapon
	weapon    world.Weapon
	resolver  *combat.Resolver
	spawner   *spawn.Controller
	behavior  behavior.Config
	intents   behavior.Intents
	rng       *rand.Rand
	terrain   world.HeightFunc
	visuals   Visuals
	audio     combat.Audio

	last       time.Time
	dt         time.Duration
	lastAttack [world.AvatarSlotCount]time.Time
	stale      int
	ticks      uint64
}

func NewSimulation(opts Options) (*Simulation, error) {
	level := opts.Level
	if level == nil {
		level = config.Default()
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	visuals := opts.Visuals
	if visuals == nil {
		visuals = LogVisuals{}
	}
	audio := opts.Audio
	if audio == nil {
		audio = NopAudio{}
	}
	terrain := opts.Terrain
	if terrain == nil {
		terrain = world.Flat(0)
	}

	s := &Simulation{
		level:     level,
		clock:     clk,
		world:     world.New(level.Bounds),
		sched:     clock.NewScheduler(),
		auth:      replication.NewAuthority(opts.Mode),
		templates: level.Templates(),
		weapons:   level.Weapons(),
		weapon:    level.Avatar.Weapon.Weapon(),
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		terrain:   terrain,
		visuals:   visuals,
		audio:     audio,
		behavior: behavior.Config{
			FlightChance:      level.Flight.Chance,
			FlightMinHeight:   level.Flight.MinHeight,
			FlightMaxHeight:   level.Flight.MaxHeight,
			FlightMinDuration: level.Flight.MinDuration,
			FlightMaxDuration: level.Flight.MaxDuration,
			ContactRadius:     level.Contact.Radius,
			ContactCooldown:   level.Contact.Cooldown,
			ContactDamage:     level.Contact.Damage,
		},
	}
	s.world.Obstacles = level.Obstacles
	s.out = replication.NewOutbox(s.auth)

	for slot := world.AvatarSlot(0); slot < world.AvatarSlotCount; slot++ {
		a := s.world.Avatar(slot)
		a.Radius = level.Avatar.Radius
		a.Health = level.Avatar.Health
		a.MaxHealth = level.Avatar.Health
		a.Alive = true
	}
	s.world.Avatar(world.SlotLocal).Present = true

	// 初期配置はどのピアでも同じ順で 1..N の ID になる
	for _, e := range level.Roster(s.templates) {
		s.world.AddEntity(e)
		visuals.Materialize(e)
	}

	var err error
	s.resolver, err = combat.NewResolver(combat.Deps{
		World:     s.world,
		Scheduler: s.sched,
		Authority: s.auth,
		Outbox:    s.out,
		Visuals:   visuals,
		Audio:     audio,
		Rand:      s.rng,
	}, combat.Config{
		DeathBursts:  level.Death.Bursts,
		DeathStagger: level.Death.Stagger,
		DeathSpread:  level.Death.Spread,
		Loot:         level.LootTable(),
		Multiplier:   level.Damage.Multiplier,
	})
	if err != nil {
		return nil, err
	}
	s.spawner, err = spawn.NewController(spawn.Deps{
		World:     s.world,
		Scheduler: s.sched,
		Authority: s.auth,
		Outbox:    s.out,
		Visuals:   visuals,
		Templates: &s.templates,
		Terrain:   terrain,
		Rand:      s.rng,
	}, spawnConfig(level))
	if err != nil {
		return nil, err
	}

	s.last = clk.Now()
	return s, nil
}

func spawnConfig(l *config.Level) spawn.Config {
	cfg := spawn.Config{
		Warning:           l.Spawn.Warning,
		InitialInterval:   l.Spawn.InitialInterval,
		MinInterval:       l.Spawn.MinInterval,
		IntervalDecrement: l.Spawn.IntervalDecrement,
		MaxConcurrent:     l.Spawn.MaxConcurrent,
		MaxLifetime:       l.Spawn.MaxLifetime,
		TTL:               l.Spawn.TTL,
		Jitter:            l.Spawn.Jitter,
		RiseDuration:      l.Spawn.RiseDuration,
		RiseDepth:         l.Spawn.RiseDepth,
		Points:            l.Spawn.Points,
		TurretLifetime:    l.Turret.Lifetime,
	}
	for _, e := range l.Spawn.Table {
		k, err := world.ParseKind(e.Kind)
		if err != nil {
			continue
		}
		cfg.Table = append(cfg.Table, spawn.Entry{
			Kind:   k,
			Weight: e.Weight,
			Params: replication.SpawnParams{Aggro: e.Aggro, Rise: e.Rise, Scale: e.Scale},
		})
	}
	return cfg
}

// Tick は 1 フレーム分進め、この tick に送出が許されたイベントを返します。
//
// 順序: 予約タスク → 出現 → 状態機械 → 射撃と接触の適用 → 弾の移動と衝突。
func (s *Simulation) Tick() []replication.Event {
	now := s.clock.Now()
	s.dt = min(max(now.Sub(s.last), 0), maxTickStep)
	s.last = now
	s.ticks++

	s.sched.Drain(now)
	s.spawner.Update(now)

	s.intents.Reset()
	behavior.Step(&behavior.Context{
		World:   s.world,
		Now:     now,
		Dt:      s.dt,
		Rand:    s.rng,
		Terrain: s.terrain,
		Config:  s.behavior,
		Intents: &s.intents,
	})
	for _, f := range s.intents.Fires {
		s.resolver.Fire(f.Owner, f.Shooter, f.Origin, f.Target, f.Weapon)
	}
	for _, c := range s.intents.Contacts {
		a := s.world.Avatar(c.Slot)
		if !a.Targetable() {
			continue
		}
		s.audio.Play(combat.CueHurt)
		if s.auth.CanMutate() {
			a.Damage(c.Damage)
		}
	}

	s.resolver.Step(now, s.dt)
	return s.out.Drain()
}

// Attack は自ピアのアバターから target へ射撃し、projectileFired を送出します。
// 遠隔アバターの射撃はイベントとして届くのでここでは扱いません。
func (s *Simulation) Attack(slot world.AvatarSlot, target world.Vec3) bool {
	if slot == world.SlotRemote || !utils.Finite(target.X, target.Y, target.Z) {
		return false
	}
	a := s.world.Avatar(slot)
	if a == nil || !a.Targetable() {
		return false
	}
	now := s.clock.Now()
	if last := s.lastAttack[slot]; !last.IsZero() && now.Sub(last) < s.weapon.Interval {
		return false
	}
	if _, ok := s.resolver.Fire(world.OwnerForSlot(slot), 0, a.Position, target, s.weapon); !ok {
		return false
	}
	s.lastAttack[slot] = now
	s.out.Push(replication.ProjectileFired{Origin: a.Position, Target: target, Kind: s.weapon.Projectile})
	return true
}

// Apply は他ピアから届いたイベントを反映します。
// 対応するものがない、権限外、または値が壊れているイベントは無視して false を返します。
func (s *Simulation) Apply(ev replication.Event) bool {
	now := s.clock.Now()
	switch ev := ev.(type) {
	case replication.EntitySpawned:
		if s.auth.CanMutate() || !s.spawner.Receive(now, ev) {
			return s.ignore(ev)
		}
	case replication.EntityDespawned:
		if s.auth.CanMutate() || !s.world.RemoveEntity(ev.ID) {
			return s.ignore(ev)
		}
		s.visuals.Remove(ev.ID)
	case replication.ProjectileFired:
		w, ok := s.weapons[ev.Kind]
		if !ok || !finite(ev.Origin) || !finite(ev.Target) {
			return s.ignore(ev)
		}
		if _, ok := s.resolver.Fire(world.OwnerRemote, 0, ev.Origin, ev.Target, w); !ok {
			return s.ignore(ev)
		}
	case replication.ExplosionOccurred:
		if s.auth.CanMutate() || !finite(ev.Position) {
			return s.ignore(ev)
		}
		s.hideNear(ev.Position)
		s.resolver.PlayDeath(now, ev.Position, ev.Loot)
	default:
		return s.ignore(ev)
	}
	return true
}

func (s *Simulation) ignore(ev replication.Event) bool {
	s.stale++
	if ev != nil {
		slog.Debug("replication event ignored", "kind", ev.EventKind(), "mode", s.auth.Mode())
	}
	return false
}

// hideNear は爆発位置に最も近い手元のエンティティを隠します。
// 体力と生死は変えず、撤去は後続の entityDespawned に任せます。
func (s *Simulation) hideNear(pos world.Vec3) {
	var nearest *world.Entity
	best := explosionMatchRadius
	for _, e := range s.world.Entities() {
		if !e.Alive || e.Hidden {
			continue
		}
		if d := e.Position.Dist(pos); d < best {
			best = d
			nearest = e
		}
	}
	if nearest != nil {
		nearest.Hidden = true
		s.visuals.Hide(nearest.ID)
	}
}

func finite(v world.Vec3) bool { return utils.Finite(v.X, v.Y, v.Z) }

// SetAvatar はアバターの状態を丸ごと上書きします。参加側がホストのアバターを写すときに使います。
func (s *Simulation) SetAvatar(slot world.AvatarSlot, pos world.Vec3, health int, alive bool) bool {
	a := s.world.Avatar(slot)
	if a == nil || !finite(pos) {
		return false
	}
	a.Position = pos
	a.Health = min(max(health, 0), a.MaxHealth)
	a.Alive = alive && a.Health > 0
	return true
}

// SetAvatarPosition は位置だけを反映します。ホストは参加側の報告から体力を受け取りません。
func (s *Simulation) SetAvatarPosition(slot world.AvatarSlot, pos world.Vec3) bool {
	a := s.world.Avatar(slot)
	if a == nil || !finite(pos) {
		return false
	}
	a.Position = pos
	return true
}

// SetAvatarHealth はホストが確定した体力と生死を反映します。
func (s *Simulation) SetAvatarHealth(slot world.AvatarSlot, health int, alive bool) bool {
	a := s.world.Avatar(slot)
	if a == nil {
		return false
	}
	a.Health = min(max(health, 0), a.MaxHealth)
	a.Alive = alive && a.Health > 0
	return true
}

func (s *Simulation) SetAvatarPresent(slot world.AvatarSlot, present bool) {
	if a := s.world.Avatar(slot); a != nil {
		a.Present = present
	}
}

// MoveAvatar は直前の tick 幅で dir 方向へ動かします。ワールド境界で止め、地形に乗せます。
func (s *Simulation) MoveAvatar(slot world.AvatarSlot, dir world.Vec3, speed float64) {
	a := s.world.Avatar(slot)
	if a == nil || !a.Alive {
		return
	}
	step := dir.Scale(speed * s.dt.Seconds())
	b := s.world.Bounds
	a.Position.X = clamp(a.Position.X+step.X, b.Min.X, b.Max.X)
	a.Position.Z = clamp(a.Position.Z+step.Z, b.Min.Z, b.Max.Z)
	a.Position.Y = s.terrain(a.Position.X, a.Position.Z)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// PlaceTurret は権威側でタレットを設置します。
func (s *Simulation) PlaceTurret(pos world.Vec3) (uint32, bool) {
	if !finite(pos) {
		return 0, false
	}
	return s.spawner.PlaceTurret(s.clock.Now(), pos)
}

// SetConnected は相手ピアとの接続状態を反映します。切断中も権威側は単独で進み続けます。
func (s *Simulation) SetConnected(connected bool) {
	s.auth.SetConnected(connected)
	s.SetAvatarPresent(world.SlotRemote, connected)
}

// Snapshot は生存エンティティと予告中の出現を書き出します。
func (s *Simulation) Snapshot() replication.Snapshot {
	now := s.clock.Now()
	var snap replication.Snapshot
	for _, e := range s.world.Entities() {
		if !e.Alive || e.Hidden {
			continue
		}
		snap.Entities = append(snap.Entities, replication.Capture(now, e))
	}
	s.spawner.Capture(now, &snap)
	return snap
}

// Restore はエンティティストアをスナップショットで丸ごと置き換えます。
func (s *Simulation) Restore(snap replication.Snapshot) {
	now := s.clock.Now()
	for _, e := range s.world.Entities() {
		s.visuals.Remove(e.ID)
	}
	s.world.ClearEntities()
	s.sched.Reset()
	for _, es := range snap.Entities {
		if !es.Kind.Valid() {
			s.stale++
			continue
		}
		e := es.Restore(now, s.templates.For(es.Kind))
		if s.world.PutEntity(e) {
			s.visuals.Materialize(e)
		}
	}
	s.spawner.Restore(now, snap)
}

func (s *Simulation) Stats() Stats {
	return Stats{
		Ticks:     s.ticks,
		Kills:     s.resolver.Kills(),
		Stale:     s.stale,
		Dropped:   s.out.Dropped(),
		Entities:  s.world.EntityCount(),
		Active:    s.spawner.Active(),
		Connected: s.auth.Connected(),
	}
}

func (s *Simulation) World() *world.World { return s.world }

func (s *Simulation) Mode() replication.Mode { return s.auth.Mode() }

func (s *Simulation) Connected() bool { return s.auth.Connected() }

func (s *Simulation) Now() time.Time { return s.clock.Now() }

// Weapon はアバターの武器です。
func (s *Simulation) Weapon() world.Weapon { return s.weapon }
