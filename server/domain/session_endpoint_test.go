package domain_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"skirmish/server/domain"
	"skirmish/server/domain/mocks"
)

func TestNewSessionEndpoint_RejectsMissingDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := domain.NewSession()
	c := domain.NewConnection(s.ID(), mocks.NewMockTransport(ctrl))
	ps := mocks.NewMockPubSub(ctrl)
	rm := mocks.NewMockRoomManager(ctrl)

	tests := []struct {
		name string
		s    *domain.Session
		c    *domain.Connection
		ps   domain.PubSub
		rm   domain.RoomManager
	}{
		{"session", nil, c, ps, rm},
		{"connection", s, nil, ps, rm},
		{"pubsub", s, c, nil, rm},
		{"room manager", s, c, ps, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := domain.NewSessionEndpoint(context.Background(), tt.s, tt.c, tt.ps, tt.rm); err == nil {
				t.Error("NewSessionEndpoint() error = nil")
			}
		})
	}
}

func receive(t *testing.T, ch <-chan domain.Message) domain.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return domain.Message{}
	}
}

func subType(t *testing.T, data []byte) (domain.DataType, uint8) {
	t.Helper()
	_, ph, _, err := domain.ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	return ph.DataType, ph.SubType
}

func TestSessionEndpoint_JoinForwardAndLeave(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := domain.NewSession()
	frames := make(chan []byte, 4)
	written := make(chan []byte, 16)

	tr := mocks.NewMockTransport(ctrl)
	tr.EXPECT().Read(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]byte, error) {
		select {
		case f := <-frames:
			return f, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}).AnyTimes()
	tr.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data []byte) error {
		written <- data
		return nil
	}).AnyTimes()
	tr.EXPECT().Close(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	rm := mocks.NewMockRoomManager(ctrl)
	rm.EXPECT().GetRoom(gomock.Any(), s.ID()).Return(domain.RoomID("arena"), nil)

	ps := domain.NewSimplePubSub()
	ctrlCh := ps.Subscribe(domain.RoomControlTopic("arena"))
	roomCh := ps.Subscribe(domain.RoomTopic("arena"))

	se, err := domain.NewSessionEndpoint(context.Background(), s, domain.NewConnection(s.ID(), tr), ps, rm)
	if err != nil {
		t.Fatalf("NewSessionEndpoint failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- se.Run() }()

	// 最初の書き込みはセッションID通知
	select {
	case data := <-written:
		if dt, sub := subType(t, data); dt != domain.DataTypeControl || domain.ControlSubType(sub) != domain.ControlSubTypeAssign {
			t.Errorf("first write = %d/%d, want control/assign", dt, sub)
		}
	case <-time.After(time.Second):
		t.Fatal("assign message not written")
	}

	join, err := domain.EncodeJoinMessage(s.ID(), 1, "")
	if err != nil {
		t.Fatalf("EncodeJoinMessage failed: %v", err)
	}
	frames <- join
	if msg := receive(t, ctrlCh); msg.SessionID != s.ID() {
		t.Errorf("join SessionID = %v, want %v", msg.SessionID, s.ID())
	}

	state := (&domain.AvatarState{X: 1, Health: 3, Flags: domain.AvatarFlagAlive}).Encode()
	input, _ := domain.EncodeFrame(s.ID(), 2, domain.DataTypeInput, 0, state)
	frames <- input
	if dt, _ := subType(t, receive(t, roomCh).Data); dt != domain.DataTypeInput {
		t.Errorf("forwarded data type = %d, want input", dt)
	}

	// 別セッションを名乗るフレームは転送しない
	spoofed, _ := domain.EncodeFrame(domain.NewSessionID(), 3, domain.DataTypeInput, 0, state)
	frames <- spoofed

	se.ForceClose()
	leave := receive(t, ctrlCh)
	if dt, sub := subType(t, leave.Data); dt != domain.DataTypeControl || domain.ControlSubType(sub) != domain.ControlSubTypeLeave {
		t.Errorf("close published %d/%d, want control/leave", dt, sub)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after ForceClose")
	}
	select {
	case msg := <-roomCh:
		t.Errorf("unexpected forwarded message from %v", msg.SessionID)
	default:
	}
	if !s.IsClosed() {
		t.Error("session not closed")
	}
}
