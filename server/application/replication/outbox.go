package replication

// Outbox は 1 tick 分の送出イベントを溜めます。権限のないイベントはここで捨てます。
type Outbox struct {
	auth    *Authority
	events  []Event
	dropped int
}

func NewOutbox(auth *Authority) *Outbox {
	return &Outbox{auth: auth}
}

// Push は送出対象なら積んで true を返します。
func (o *Outbox) Push(ev Event) bool {
	if !o.auth.MayEmit(ev.EventKind()) {
		o.dropped++
		return false
	}
	o.events = append(o.events, ev)
	return true
}

// Drain は積まれたイベントを発生順で返し、空にします。
func (o *Outbox) Drain() []Event {
	out := o.events
	o.events = nil
	return out
}

// Dropped は送出されずに捨てられた累計数です。
func (o *Outbox) Dropped() int { return o.dropped }
