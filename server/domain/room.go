package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type RoomID string

func (id RoomID) String() string { return string(id) }

func (id RoomID) IsEmpty() bool { return id == "" }

var ErrRoomBusy = errors.New("room send queue is full")

const DefaultTickInterval = time.Second / 60

type roomSendKind uint8

const (
	roomSendBroadcast roomSendKind = iota
	roomSendTo
)

type roomSend struct {
	kind      roomSendKind
	sessionID SessionID
	data      []byte
}

type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application // 外部からアプリケーションロジックを注入できる

	sendCh chan roomSend

	tickInterval time.Duration
}

func NewRoom(id RoomID, pubsub PubSub, application Application, tickInterval time.Duration) *Room {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Room{
		ID:           id,
		sessions:     make(map[SessionID]struct{}),
		pubsub:       pubsub,
		application:  application,
		sendCh:       make(chan roomSend, 1024),
		tickInterval: tickInterval,
	}
}

func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for sessionID := range r.sessions {
		r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
	}
}

func (r *Room) SendTo(ctx context.Context, sessionID SessionID, data []byte) {
	r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
}

func (r *Room) EnqueueBroadcast(ctx context.Context, data []byte) error {
	return r.enqueueSend(ctx, roomSend{kind: roomSendBroadcast, data: data})
}

func (r *Room) EnqueueSendTo(ctx context.Context, sessionID SessionID, data []byte) error {
	return r.enqueueSend(ctx, roomSend{kind: roomSendTo, sessionID: sessionID, data: data})
}

func (r *Room) enqueueSend(ctx context.Context, msg roomSend) error {
	select {
	case <-ctx.Done():
		return nil
	case r.sendCh <- msg:
		return nil
	default:
		return ErrRoomBusy
	}
}

func (r *Room) Run(ctx context.Context) error {
	// room宛のメッセージを購読
	roomTopic := RoomTopic(r.ID)
	msgCh := r.pubsub.Subscribe(roomTopic)
	defer r.pubsub.Unsubscribe(roomTopic, msgCh)

	// room制御用トピックを購読（join/leave）
	ctrlTopic := RoomControlTopic(r.ID)
	ctrlCh := r.pubsub.Subscribe(ctrlTopic)
	defer r.pubsub.Unsubscribe(ctrlTopic, ctrlCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// 制御メッセージを処理（join/leave）
		CTRL_LOOP:
			for {
				select {
				case ctrl := <-ctrlCh:
					r.handleControlMessage(ctx, ctrl)
				default:
					break CTRL_LOOP
				}
			}
			// 受信メッセージを処理
		RECEIVE_LOOP:
			for {
				select {
				case msg := <-msgCh:
					// アプリケーションロジックが担当する
					if err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data); err != nil {
						slog.WarnContext(ctx, "room handle message failed", "sessionID", msg.SessionID, "err", err)
					}
				default:
					break RECEIVE_LOOP
				}
			}
			// 参加時のスナップショットなど、キューに積まれた送信を先に流す
		SEND_LOOP:
			for {
				select {
				case msg := <-r.sendCh:
					r.handleSendMessage(ctx, msg)
				default:
					break SEND_LOOP
				}
			}
			for _, f := range r.application.Tick(ctx) {
				r.deliver(ctx, f)
			}
		}
	}
}

// handleControlMessage はjoin/leave制御フレームを処理します。
func (r *Room) handleControlMessage(ctx context.Context, msg Message) {
	_, payloadHeader, _, err := ParseFrame(msg.Data)
	if err != nil || payloadHeader.DataType != DataTypeControl {
		slog.WarnContext(ctx, "room: malformed control frame", "sessionID", msg.SessionID, "err", err)
		return
	}
	switch ControlSubType(payloadHeader.SubType) {
	case ControlSubTypeJoin:
		r.sessions[msg.SessionID] = struct{}{}
		for _, f := range r.application.Join(ctx, msg.SessionID) {
			if f.To.IsEmpty() {
				f.To = msg.SessionID
			}
			if err := r.EnqueueSendTo(ctx, f.To, f.Data); err != nil {
				slog.WarnContext(ctx, "room: join frame dropped", "sessionID", msg.SessionID, "err", err)
			}
		}
		slog.InfoContext(ctx, "room: session joined", "roomID", r.ID, "sessionID", msg.SessionID, "sessions", len(r.sessions))
	case ControlSubTypeLeave:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			return
		}
		delete(r.sessions, msg.SessionID)
		r.application.Leave(ctx, msg.SessionID)
		slog.InfoContext(ctx, "room: session left", "roomID", r.ID, "sessionID", msg.SessionID, "sessions", len(r.sessions))
	default:
	}
}

func (r *Room) handleSendMessage(ctx context.Context, msg roomSend) {
	switch msg.kind {
	case roomSendBroadcast:
		r.Broadcast(ctx, msg.data)
	case roomSendTo:
		r.SendTo(ctx, msg.sessionID, msg.data)
	default:
	}
}

func (r *Room) deliver(ctx context.Context, f Frame) {
	if f.To.IsEmpty() {
		r.Broadcast(ctx, f.Data)
		return
	}
	if _, ok := r.sessions[f.To]; ok {
		r.SendTo(ctx, f.To, f.Data)
	}
}
