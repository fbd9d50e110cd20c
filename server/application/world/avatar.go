package world

// AvatarSlot はプレイヤーアバターの固定列挙順です。ターゲット選択の同距離判定はこの順で決まります。
type AvatarSlot uint8

const (
	SlotLocal AvatarSlot = iota
	SlotRemote
	SlotSplit

	AvatarSlotCount
)

func (s AvatarSlot) String() string {
	switch s {
	case SlotLocal:
		return "local"
	case SlotRemote:
		return "remote"
	case SlotSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Avatar は入力レイヤから供給されるプレイヤー状態です。
// Present は接続済みかつ可視 (split はローカル分割画面が有効) を表します。
type Avatar struct {
	Slot      AvatarSlot
	Position  Vec3
	Radius    float64
	Health    int
	MaxHealth int
	Alive     bool
	Present   bool
}

// Damage は体力を n 減らします。0 で止まり、死亡した呼び出しで true を返します。
func (a *Avatar) Damage(n int) bool {
	if !a.Alive || n <= 0 {
		return false
	}
	a.Health -= n
	if a.Health > 0 {
		return false
	}
	a.Health = 0
	a.Alive = false
	return true
}

// Targetable はターゲット候補に含めるかどうかです。
func (a *Avatar) Targetable() bool { return a.Present && a.Alive }

// Owner は弾の発射元です。ダメージ倍率と敵味方の判定に使います。
type Owner uint8

const (
	OwnerLocal Owner = iota
	OwnerRemote
	OwnerSplit
	OwnerTurret
	OwnerHostile
)

func OwnerForSlot(s AvatarSlot) Owner {
	switch s {
	case SlotRemote:
		return OwnerRemote
	case SlotSplit:
		return OwnerSplit
	default:
		return OwnerLocal
	}
}

func (o Owner) Friendly() bool { return o != OwnerHostile }

func (o Owner) String() string {
	switch o {
	case OwnerLocal:
		return "local"
	case OwnerRemote:
		return "remote"
	case OwnerSplit:
		return "split"
	case OwnerTurret:
		return "turret"
	default:
		return "hostile"
	}
}
