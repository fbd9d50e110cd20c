package domain_test

import (
	"context"
	"testing"
	"time"

	"skirmish/server/domain"
)

func TestHeartbeatService_SendsPingToWriteCh(t *testing.T) {
	id := domain.NewSessionID()
	writeCh := make(chan []byte, 16)

	hb := domain.NewHeartbeatService(50*time.Millisecond, id, writeCh)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go hb.Run(ctx)

	select {
	case msg := <-writeCh:
		header, payloadHeader, body, err := domain.ParseFrame(msg)
		if err != nil {
			t.Fatalf("ParseFrame failed: %v", err)
		}
		if domain.SessionIDFromBytes(header.SessionID) != id {
			t.Errorf("SessionID = %v, want %v", domain.SessionIDFromBytes(header.SessionID), id)
		}
		if payloadHeader.DataType != domain.DataTypeControl || domain.ControlSubType(payloadHeader.SubType) != domain.ControlSubTypePing {
			t.Errorf("payload header = %+v, want control/ping", payloadHeader)
		}
		if len(body) != 0 {
			t.Errorf("body length = %d, want 0", len(body))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for ping message")
	}
}

func TestHeartbeatService_StopsOnContextCancel(t *testing.T) {
	writeCh := make(chan []byte, 16)
	hb := domain.NewHeartbeatService(50*time.Millisecond, domain.NewSessionID(), writeCh)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hb.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("HeartbeatService did not stop after context cancel")
	}
}

func TestHeartbeatService_DropsWhenWriteChFull(t *testing.T) {
	// バッファサイズ0でwriteChが常に満杯になるようにする
	writeCh := make(chan []byte)
	hb := domain.NewHeartbeatService(50*time.Millisecond, domain.NewSessionID(), writeCh)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		hb.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("HeartbeatService blocked on full writeCh")
	}
}

func TestHeartbeatService_DisabledReturnsImmediately(t *testing.T) {
	hb := domain.NewHeartbeatService(0, domain.NewSessionID(), make(chan []byte))

	done := make(chan struct{})
	go func() {
		hb.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Run with zero interval did not return")
	}
}
