package world

import "time"

type FlightPhase uint8

const (
	FlightGrounded FlightPhase = iota
	FlightAscending
	FlightHovering
	FlightDescending
)

func (p FlightPhase) String() string {
	switch p {
	case FlightAscending:
		return "ascending"
	case FlightHovering:
		return "hovering"
	case FlightDescending:
		return "descending"
	default:
		return "grounded"
	}
}

const (
	ascendFraction  = 0.3
	descendFraction = 0.7
)

// Flight は飛行ボスの上下サイクルです。水平移動とは独立に進みます。
// 上昇 30% / 滞空 40% / 下降 30% の割合で Duration を分割します。
type Flight struct {
	GroundY  float64
	TargetY  float64
	Phase    FlightPhase
	Start    time.Time
	Duration time.Duration
}

// Begin は地上にいる場合のみ飛行を開始します。飛行中の再突入はしません。
func (f *Flight) Begin(now time.Time, targetY float64, d time.Duration) bool {
	if f.Phase != FlightGrounded || d <= 0 {
		return false
	}
	f.TargetY = targetY
	f.Start = now
	f.Duration = d
	f.Phase = FlightAscending
	return true
}

// Advance は now 時点の高さを返し、フェーズを更新します。
func (f *Flight) Advance(now time.Time) float64 {
	if f.Phase == FlightGrounded {
		return f.GroundY
	}
	elapsed := now.Sub(f.Start)
	if elapsed >= f.Duration {
		f.Phase = FlightGrounded
		return f.GroundY
	}
	p := float64(elapsed) / float64(f.Duration)
	switch {
	case p < ascendFraction:
		f.Phase = FlightAscending
		return Lerp(f.GroundY, f.TargetY, p/ascendFraction)
	case p < descendFraction:
		f.Phase = FlightHovering
		return f.TargetY
	default:
		f.Phase = FlightDescending
		return Lerp(f.TargetY, f.GroundY, (p-descendFraction)/(1-descendFraction))
	}
}
