package replication

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"skirmish/server/application/world"
)

// EntityState は 1 エンティティの復元に必要な可変部分です。
// 種別ごとの固定値は受信側がテンプレートから補います。
type EntityState struct {
	ID       world.EntityID `msgpack:"id"`
	Kind     world.Kind     `msgpack:"kind"`
	Category world.Category `msgpack:"cat"`
	Position world.Vec3     `msgpack:"pos"`
	Home     world.Vec3     `msgpack:"home"`
	Facing   float64        `msgpack:"facing"`
	Dir      float64        `msgpack:"dir"`
	Health   int            `msgpack:"hp"`
	Alive    bool           `msgpack:"alive"`
	Chasing  bool           `msgpack:"chasing,omitempty"`
	Patrol   [2]float64     `msgpack:"patrol"`
	SpawnID  uint32         `msgpack:"sid,omitempty"`
	Age      time.Duration  `msgpack:"age,omitempty"`
	TTL      time.Duration  `msgpack:"ttl,omitempty"`
	Scale    float64        `msgpack:"scale,omitempty"`
}

// Snapshot は参加・再参加時とキーフレーム周期で送る権威状態の全体です。
// 受信側はエンティティストアを丸ごと置き換えます。
type Snapshot struct {
	Entities    []EntityState   `msgpack:"entities"`
	Pending     []EntitySpawned `msgpack:"pending"`
	NextSpawnID uint32          `msgpack:"nextSpawn"`
	Lifetime    int             `msgpack:"lifetime"`
	Interval    time.Duration   `msgpack:"interval"`
}

// Capture は e の可変状態を取り出します。
func Capture(now time.Time, e *world.Entity) EntityState {
	s := EntityState{
		ID:       e.ID,
		Kind:     e.Kind,
		Category: e.Category,
		Position: e.Position,
		Home:     e.Home,
		Facing:   e.Facing,
		Dir:      e.Dir,
		Health:   e.Health,
		Alive:    e.Alive,
		Chasing:  e.Chasing,
		Patrol:   [2]float64{e.Patrol.Left, e.Patrol.Right},
		SpawnID:  e.SpawnID,
		TTL:      e.TTL,
		Scale:    e.Scale,
	}
	if !e.SpawnedAt.IsZero() {
		s.Age = now.Sub(e.SpawnedAt)
	}
	return s
}

// Restore は tpl から作ったエンティティに s を上書きします。
func (s EntityState) Restore(now time.Time, tpl world.Template) *world.Entity {
	e := tpl.Build(s.Position)
	e.ID = s.ID
	e.Category = s.Category
	e.Home = s.Home
	e.Facing = s.Facing
	e.Dir = s.Dir
	e.Health = s.Health
	e.Alive = s.Alive
	e.Chasing = s.Chasing
	e.Patrol = world.PatrolBounds{Left: s.Patrol[0], Right: s.Patrol[1]}
	e.SpawnID = s.SpawnID
	e.TTL = s.TTL
	if s.Scale > 0 {
		e.Scale = s.Scale
	}
	if s.SpawnID != 0 {
		e.SpawnedAt = now.Add(-s.Age)
	}
	return e
}

func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("replication: decode snapshot: %w", err)
	}
	return s, nil
}
