package world

import "time"

type EntityID uint32

// spawnIDBase より上の ID はスポーンコントローラが spawnID から導出します。
// レベル初期配置は 1..N を使うので衝突しません。
const spawnIDBase EntityID = 1 << 24

// SpawnEntityID は spawnID からピア間で一致するエンティティ ID を導出します。
func SpawnEntityID(spawnID uint32) EntityID { return spawnIDBase + EntityID(spawnID) }

// PatrolBounds は X 軸上の巡回区間です。Left == Right なら静止します。
type PatrolBounds struct {
	Left  float64
	Right float64
}

// Weapon は射撃パラメータです。Interval が 0 なら撃ちません。
type Weapon struct {
	Projectile  string
	Interval    time.Duration
	Range       float64
	Damage      int
	Speed       float64
	Radius      float64
	MaxDistance float64
	Freeze      time.Duration
}

func (w Weapon) Armed() bool { return w.Interval > 0 && w.Speed > 0 }

// Entity は敵または防衛構造物 1 体分の状態です。ロジックは持ちません。
type Entity struct {
	ID       EntityID
	Kind     Kind
	Category Category

	Position Vec3
	Facing   float64
	Speed    float64
	Scale    float64
	Radius   float64

	Alive     bool
	Hidden    bool
	Health    int
	MaxHealth int

	Patrol        PatrolBounds
	Dir           float64
	Home          Vec3
	ChaseRange    float64
	HomeThreshold float64
	Chasing       bool

	Weapon      Weapon
	LastFire    time.Time
	FrozenUntil time.Time
	TurnRate    float64

	ContactCooldown [AvatarSlotCount]time.Time

	Flight *Flight
	Rising *Rise

	LootEligible bool
	SpawnID      uint32
	SpawnedAt    time.Time
	TTL          time.Duration
}

// ApplyDamage は体力を減らし、この呼び出しで死亡した場合に true を返します。
// 死亡後は何もしません。体力は 0 未満になりません。
func (e *Entity) ApplyDamage(n int) bool {
	if !e.Alive || n <= 0 {
		return false
	}
	e.Health -= n
	if e.Health > 0 {
		return false
	}
	e.Health = 0
	e.Alive = false
	return true
}

func (e *Entity) Frozen(now time.Time) bool { return now.Before(e.FrozenUntil) }

// Freeze は凍結期限を延長します。短くはしません。
func (e *Entity) Freeze(until time.Time) {
	if until.After(e.FrozenUntil) {
		e.FrozenUntil = until
	}
}

// CollisionRadius は見た目のスケールを反映した当たり半径です。
func (e *Entity) CollisionRadius() float64 {
	if e.Scale <= 0 {
		return e.Radius
	}
	return e.Radius * e.Scale
}

func (e *Entity) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.SpawnedAt) > e.TTL
}

func (e *Entity) Flying() bool { return e.Flight != nil && e.Flight.Phase != FlightGrounded }

// Rise は出現直後に地中から定位置まで上がる補間です。
type Rise struct {
	FromY    float64
	ToY      float64
	Start    time.Time
	Duration time.Duration
}

// Advance は now 時点の高さと、上昇が完了したかを返します。
func (r *Rise) Advance(now time.Time) (float64, bool) {
	if r.Duration <= 0 {
		return r.ToY, true
	}
	elapsed := now.Sub(r.Start)
	if elapsed >= r.Duration {
		return r.ToY, true
	}
	if elapsed < 0 {
		return r.FromY, false
	}
	return Lerp(r.FromY, r.ToY, float64(elapsed)/float64(r.Duration)), false
}
