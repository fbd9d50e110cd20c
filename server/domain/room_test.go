package domain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"skirmish/server/domain"
)

type recordingApp struct {
	mu      sync.Mutex
	joined  []domain.SessionID
	left    []domain.SessionID
	handled int
}

func (a *recordingApp) HandleMessage(_ context.Context, _ domain.SessionID, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handled++
	return nil
}

func (a *recordingApp) Join(_ context.Context, id domain.SessionID) []domain.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.joined = append(a.joined, id)
	return []domain.Frame{{Data: []byte("snapshot")}}
}

func (a *recordingApp) Leave(_ context.Context, id domain.SessionID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.left = append(a.left, id)
}

func (a *recordingApp) Tick(context.Context) []domain.Frame {
	return []domain.Frame{{Data: []byte("tick")}}
}

func (a *recordingApp) counts() (joined, left, handled int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.joined), len(a.left), a.handled
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestRoom_JoinTickLeave(t *testing.T) {
	ps := domain.NewSimplePubSub()
	app := &recordingApp{}
	room := domain.NewRoom("arena", ps, app, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = room.Run(ctx) }()
	// Run が購読を済ませるまで待つ
	time.Sleep(20 * time.Millisecond)

	id := domain.NewSessionID()
	inbox := ps.Subscribe(domain.SessionTopic(id))

	join, _ := domain.EncodeJoinMessage(id, 0, "arena")
	ps.Publish(ctx, domain.RoomControlTopic("arena"), domain.Message{SessionID: id, Data: join})

	if got := string(receive(t, inbox).Data); got != "snapshot" {
		t.Fatalf("first frame = %q, want snapshot", got)
	}
	if got := string(receive(t, inbox).Data); got != "tick" {
		t.Errorf("second frame = %q, want tick", got)
	}

	ps.Publish(ctx, domain.RoomTopic("arena"), domain.Message{SessionID: id, Data: []byte("input")})
	eventually(t, func() bool { _, _, handled := app.counts(); return handled == 1 })

	ps.Publish(ctx, domain.RoomControlTopic("arena"), domain.Message{SessionID: id, Data: domain.EncodeLeaveMessage(id)})
	eventually(t, func() bool { _, left, _ := app.counts(); return left == 1 })

	// 離脱後は tick のブロードキャストが届かない
	time.Sleep(20 * time.Millisecond)
	for len(inbox) > 0 {
		<-inbox
	}
	time.Sleep(30 * time.Millisecond)
	if n := len(inbox); n != 0 {
		t.Errorf("frames after leave = %d, want 0", n)
	}
}

func TestRoom_IgnoresLeaveWithoutJoin(t *testing.T) {
	ps := domain.NewSimplePubSub()
	app := &recordingApp{}
	room := domain.NewRoom("arena", ps, app, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = room.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	id := domain.NewSessionID()
	ps.Publish(ctx, domain.RoomControlTopic("arena"), domain.Message{SessionID: id, Data: domain.EncodeLeaveMessage(id)})
	ps.Publish(ctx, domain.RoomControlTopic("arena"), domain.Message{SessionID: id, Data: []byte("junk")})
	time.Sleep(30 * time.Millisecond)

	if joined, left, _ := app.counts(); joined != 0 || left != 0 {
		t.Errorf("joined=%d left=%d, want 0 0", joined, left)
	}
}
