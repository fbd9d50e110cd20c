package replication

import (
	"fmt"
	"time"

	"skirmish/server/application/world"
)

// Kind はレプリケーションイベントの種類です。フレームの SubType にそのまま載ります。
type Kind uint8

const (
	KindEntitySpawned Kind = iota + 1
	KindEntityDespawned
	KindProjectileFired
	KindExplosionOccurred
)

func (k Kind) String() string {
	switch k {
	case KindEntitySpawned:
		return "entitySpawned"
	case KindEntityDespawned:
		return "entityDespawned"
	case KindProjectileFired:
		return "projectileFired"
	case KindExplosionOccurred:
		return "explosionOccurred"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event は他ピアで効果を再現するための最小限のペイロードです。
// エンティティ一覧全体は決して運びません。
type Event interface {
	EventKind() Kind
}

// SpawnParams はスポーン記述子の付加パラメータです。
type SpawnParams struct {
	Aggro bool          `msgpack:"aggro,omitempty"`
	Rise  bool          `msgpack:"rise,omitempty"`
	Scale float64       `msgpack:"scale,omitempty"`
	TTL   time.Duration `msgpack:"ttl,omitempty"`
}

type EntitySpawned struct {
	Kind     world.Kind    `msgpack:"kind"`
	Position world.Vec3    `msgpack:"pos"`
	SpawnID  uint32        `msgpack:"sid"`
	Warning  time.Duration `msgpack:"warn"`
	Params   SpawnParams   `msgpack:"params"`
}

type EntityDespawned struct {
	ID world.EntityID `msgpack:"id"`
}

// ProjectileFired はアバターの射撃です。受信側は発射元をリモートアバターとして扱います。
type ProjectileFired struct {
	Origin world.Vec3 `msgpack:"origin"`
	Target world.Vec3 `msgpack:"target"`
	Kind   string     `msgpack:"kind"`
}

// ExplosionOccurred は死亡演出の開始です。Loot が true なら受信側も同じ位置から戦利品を生成します。
type ExplosionOccurred struct {
	Position world.Vec3 `msgpack:"pos"`
	Loot     bool       `msgpack:"loot,omitempty"`
}

func (EntitySpawned) EventKind() Kind     { return KindEntitySpawned }
func (EntityDespawned) EventKind() Kind   { return KindEntityDespawned }
func (ProjectileFired) EventKind() Kind   { return KindProjectileFired }
func (ExplosionOccurred) EventKind() Kind { return KindExplosionOccurred }
