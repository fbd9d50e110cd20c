package domain_test

import (
	"context"
	"testing"

	"skirmish/server/domain"
)

func TestSimplePubSub_FanOutAndUnsubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	ctx := context.Background()
	topic := domain.Topic("room:arena")

	a := ps.Subscribe(topic)
	b := ps.Subscribe(topic)
	other := ps.Subscribe("room:other")

	ps.Publish(ctx, topic, domain.Message{Data: []byte("x")})
	if string(receive(t, a).Data) != "x" || string(receive(t, b).Data) != "x" {
		t.Fatal("subscribers did not both receive the message")
	}
	if len(other) != 0 {
		t.Error("message leaked to another topic")
	}

	ps.Unsubscribe(topic, a)
	ps.Publish(ctx, topic, domain.Message{Data: []byte("y")})
	if len(a) != 0 {
		t.Error("unsubscribed channel received a message")
	}
	if string(receive(t, b).Data) != "y" {
		t.Error("remaining subscriber missed the message")
	}
}

func TestSimplePubSub_DropsWhenFull(t *testing.T) {
	ps := domain.NewSimplePubSub()
	ch := ps.Subscribe("t")
	for range cap(ch) + 10 {
		ps.Publish(context.Background(), "t", domain.Message{})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
}

func TestSimpleRoomManager(t *testing.T) {
	rm := domain.NewSimpleRoomManager("arena")
	id, err := rm.GetRoom(context.Background(), domain.NewSessionID())
	if err != nil || id != "arena" {
		t.Errorf("GetRoom() = %q, %v, want arena", id, err)
	}
	if _, err := domain.NewSimpleRoomManager("").GetRoom(context.Background(), domain.NewSessionID()); err == nil {
		t.Error("GetRoom() with no default room returned nil error")
	}
}
