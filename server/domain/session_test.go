package domain

import (
	"testing"
	"time"
)

// TestNewSession_InitializesTimestamps は NewSession がタイムスタンプを初期化することを確認します。
func TestNewSession_InitializesTimestamps(t *testing.T) {
	s := NewSession()

	if s.lastRead.Load() == 0 {
		t.Errorf("lastRead is not initialized")
	}
	if s.lastWrite.Load() == 0 {
		t.Errorf("lastWrite is not initialized")
	}
	if s.lastPong.Load() == 0 {
		t.Errorf("lastPong is not initialized")
	}
	if s.ID().IsEmpty() {
		t.Errorf("ID is empty")
	}
}

func TestSession_IsIdle(t *testing.T) {
	s := NewSession()
	old := time.Now().Add(-time.Minute).UnixNano()
	s.lastPong.Store(old)

	idle, reason := s.IsIdle(30 * time.Second)
	if !idle {
		t.Fatal("IsIdle() = false, want true")
	}
	if reason != IdlePong {
		t.Errorf("reason = %v, want pong", reason)
	}

	s.lastRead.Store(old)
	if _, reason := s.IsIdle(30 * time.Second); reason.String() != "read|pong" {
		t.Errorf("reason = %q, want read|pong", reason.String())
	}

	if idle, reason := s.IsIdle(0); idle || reason != IdleDisabled {
		t.Errorf("IsIdle(0) = %v, %v, want false, disabled", idle, reason)
	}
}

func TestSession_CloseOnce(t *testing.T) {
	s := NewSession()
	if !s.Close() {
		t.Fatal("first Close() = false")
	}
	if s.Close() {
		t.Error("second Close() = true")
	}
	if !s.IsClosed() {
		t.Error("IsClosed() = false")
	}
}

func TestSessionID_Bytes(t *testing.T) {
	id := NewSessionID()
	if SessionIDFromBytes(id.Bytes()) != id {
		t.Errorf("SessionIDFromBytes(Bytes()) != id")
	}
	if !(SessionID{}).IsEmpty() {
		t.Errorf("zero SessionID is not empty")
	}
}
