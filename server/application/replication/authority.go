package replication

// Mode はこのピアの権限です。
type Mode uint8

const (
	ModeSingle Mode = iota // オフライン。全て自分で確定する
	ModeHost               // 接続セッションの権威側
	ModeClient             // 参加側。見た目のみ再現する
)

func (m Mode) String() string {
	switch m {
	case ModeHost:
		return "host"
	case ModeClient:
		return "client"
	default:
		return "single"
	}
}

// Authority はどのピアが正準状態を変更でき、どのイベントがネットワークを越えるかを決めます。
type Authority struct {
	mode      Mode
	connected bool
}

func NewAuthority(mode Mode) *Authority {
	return &Authority{mode: mode}
}

func (a *Authority) Mode() Mode { return a.mode }

// CanMutate は health/alive とスポーン判断を確定できるかどうかです。
func (a *Authority) CanMutate() bool { return a.mode != ModeClient }

func (a *Authority) Connected() bool { return a.connected }

// SetConnected は接続状態を更新します。切断中のホストはシングルプレイと同等に動き続けます。
func (a *Authority) SetConnected(connected bool) { a.connected = connected }

// MayEmit は kind のイベントを送出してよいかどうかです。
// 参加側は自分のアバターの射撃だけを送ります。
func (a *Authority) MayEmit(kind Kind) bool {
	if !a.connected {
		return false
	}
	switch a.mode {
	case ModeHost:
		return true
	case ModeClient:
		return kind == KindProjectileFired
	default:
		return false
	}
}
