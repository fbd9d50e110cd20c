package clock

import "time"

// Clock はシミュレーションが参照する現在時刻を提供します。
// 本番では System、テストでは Manual を注入します。
type Clock interface {
	Now() time.Time
}

// System は壁時計をそのまま返す Clock です。
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual は明示的に進める Clock です。単一 goroutine から使う前提です。
type Manual struct {
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time { return m.now }

// Advance は d だけ時刻を進め、進めた後の時刻を返します。
func (m *Manual) Advance(d time.Duration) time.Time {
	m.now = m.now.Add(d)
	return m.now
}

func (m *Manual) Set(t time.Time) { m.now = t }
