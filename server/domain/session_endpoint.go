package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrInitializationFailed はセッションエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize session endpoint")
)

const (
	idleCheckInterval = time.Second
	idleTimeout       = 30 * time.Second
	pingInterval      = 5 * time.Second
)

type SessionEndpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	session     *Session
	connection  *Connection
	pubsub      PubSub
	roomManager RoomManager

	mu     sync.Mutex
	roomID RoomID // join 時に決まる

	ctrlCh  chan endpointEvent // 制御用チャネル
	writeCh chan []byte        // 書き込み用チャネル

	// lifecycle
	closed atomic.Bool
}

func NewSessionEndpoint(ctx context.Context, session *Session, connection *Connection, pubsub PubSub, roomManager RoomManager) (*SessionEndpoint, error) {
	if session == nil || connection == nil || pubsub == nil || roomManager == nil {
		return nil, ErrInitializationFailed
	}
	ctx, cancel := context.WithCancel(ctx)
	se := &SessionEndpoint{
		ctx:         ctx,
		cancel:      cancel,
		session:     session,
		connection:  connection,
		pubsub:      pubsub,
		roomManager: roomManager,
		ctrlCh:      make(chan endpointEvent, 16),
		writeCh:     make(chan []byte, 1024),
	}
	return se, nil
}

// Run は接続が閉じるまでブロックします。
func (se *SessionEndpoint) Run() error {
	// 自分宛のメッセージを購読
	sessionTopic := SessionTopic(se.session.ID())
	msgCh := se.pubsub.Subscribe(sessionTopic)
	defer se.pubsub.Unsubscribe(sessionTopic, msgCh)

	heartbeat := NewHeartbeatService(pingInterval, se.session.ID(), se.writeCh)

	eg, ctx := errgroup.WithContext(se.ctx)
	eg.Go(func() error {
		se.ownerLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.writeLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.subscribeLoop(ctx, msgCh)
		return nil
	})
	eg.Go(func() error {
		heartbeat.Run(ctx)
		return nil
	})

	// セッションID通知を送信
	if err := se.Send(EncodeAssignMessage(se.session.ID())); err != nil {
		se.close()
		_ = eg.Wait()
		return err
	}

	return eg.Wait()
}

func (se *SessionEndpoint) Send(data []byte) error {
	select {
	case se.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (se *SessionEndpoint) Close(ctx context.Context) {
	se.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

func (se *SessionEndpoint) ForceClose() {
	se.close()
}

// RoomID は参加中のルームです。未参加なら空です。
func (se *SessionEndpoint) RoomID() RoomID {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.roomID
}

func (se *SessionEndpoint) setRoomID(id RoomID) {
	se.mu.Lock()
	se.roomID = id
	se.mu.Unlock()
}

// ownerLoop は論理セッションの状態を監視し、必要に応じて接続の管理を行います。
func (se *SessionEndpoint) ownerLoop(ctx context.Context) {
	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-se.ctrlCh:
			se.handleControlEvent(ctx, ev)
		case <-ticker.C:
			if idle, reason := se.session.IsIdle(idleTimeout); idle {
				se.handleControlEvent(ctx, endpointEvent{
					kind: evClose,
					err:  errors.New("idle: " + reason.String()),
				})
			}
		}
	}
}

func (se *SessionEndpoint) readLoop(ctx context.Context) {
	for {
		data, err := se.connection.Read(ctx)
		if err != nil {
			se.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			return
		}
		se.session.TouchRead()
		se.handleData(ctx, data)
	}
}

func (se *SessionEndpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-se.writeCh:
			if err := se.connection.Write(ctx, data); err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
			se.session.TouchWrite()
		}
	}
}

// subscribeLoop はpubsubからのメッセージをwriteChに転送します。
func (se *SessionEndpoint) subscribeLoop(ctx context.Context, msgCh <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			select {
			case se.writeCh <- msg.Data:
			default:
				slog.WarnContext(ctx, "subscribeLoop: writeCh full, message dropped", "sessionID", se.session.ID())
			}
		}
	}
}

// close は一度だけ実行され、参加中のルームへ離脱を通知してから接続を閉じます。
func (se *SessionEndpoint) close() {
	if !se.closed.CompareAndSwap(false, true) {
		return
	}
	if roomID := se.RoomID(); !roomID.IsEmpty() {
		ctx := context.WithoutCancel(se.ctx)
		se.pubsub.Publish(ctx, RoomControlTopic(roomID), Message{
			SessionID: se.session.ID(),
			Data:      EncodeLeaveMessage(se.session.ID()),
		})
		se.setRoomID("")
	}
	se.cancel()
	se.session.Close()
	se.connection.Close("")
}

func (se *SessionEndpoint) handleData(ctx context.Context, data []byte) {
	header, payloadHeader, body, err := ParseFrame(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse frame", "err", err)
		return
	}
	if SessionIDFromBytes(header.SessionID) != se.session.ID() {
		slog.WarnContext(ctx, "session ID mismatch", "expected", se.session.ID(), "got", SessionIDFromBytes(header.SessionID))
		return
	}

	switch payloadHeader.DataType {
	case DataTypeControl:
		se.handleControlMessage(ctx, ControlSubType(payloadHeader.SubType), data, body)
	case DataTypeInput, DataTypeCombat:
		se.forward(ctx, data)
	default:
		slog.WarnContext(ctx, "unknown data type", "dataType", payloadHeader.DataType)
	}
}

// forward はデータメッセージを参加中のルームへ転送します。
func (se *SessionEndpoint) forward(ctx context.Context, data []byte) {
	roomID := se.RoomID()
	if roomID.IsEmpty() {
		slog.WarnContext(ctx, "received data message before joining a room", "sessionID", se.session.ID())
		return
	}
	se.pubsub.Publish(ctx, RoomTopic(roomID), Message{SessionID: se.session.ID(), Data: data})
}

func (se *SessionEndpoint) handleControlMessage(ctx context.Context, subType ControlSubType, data, body []byte) {
	switch subType {
	case ControlSubTypeJoin:
		payload, err := ParseJoinPayload(body)
		if err != nil {
			slog.WarnContext(ctx, "failed to parse join message", "err", err)
			return
		}
		roomID := payload.RoomID
		// RoomIDが空の場合、RoomManagerからデフォルトルームを取得
		if roomID.IsEmpty() {
			roomID, err = se.roomManager.GetRoom(ctx, se.session.ID())
			if err != nil {
				slog.ErrorContext(ctx, "failed to get default room", "err", err)
				return
			}
			slog.DebugContext(ctx, "auto-assigned room", "sessionID", se.session.ID(), "roomID", roomID)
		}
		if prev := se.RoomID(); !prev.IsEmpty() && prev != roomID {
			se.pubsub.Publish(ctx, RoomControlTopic(prev), Message{SessionID: se.session.ID(), Data: EncodeLeaveMessage(se.session.ID())})
		}
		se.setRoomID(roomID)
		slog.InfoContext(ctx, "session joined room", "sessionID", se.session.ID(), "roomID", roomID)
		se.pubsub.Publish(ctx, RoomControlTopic(roomID), Message{SessionID: se.session.ID(), Data: data})
	case ControlSubTypeLeave:
		roomID := se.RoomID()
		if roomID.IsEmpty() {
			slog.WarnContext(ctx, "session not in any room, cannot leave", "sessionID", se.session.ID())
			return
		}
		se.pubsub.Publish(ctx, RoomControlTopic(roomID), Message{SessionID: se.session.ID(), Data: data})
		se.setRoomID("")
		slog.InfoContext(ctx, "session left room", "sessionID", se.session.ID(), "roomID", roomID)
	case ControlSubTypePong:
		se.sendCtrlEvent(ctx, endpointEvent{kind: evPong})
	case ControlSubTypeResync:
		se.forward(ctx, data)
	default:
		slog.DebugContext(ctx, "ignored control message", "subType", subType)
	}
}

// handleControlEvent は制御チャネルからのイベントを処理し論理セッションの状態を更新する唯一の関数です。
func (se *SessionEndpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evClose:
		if ev.err != nil {
			slog.InfoContext(ctx, "closing session", "sessionID", se.session.ID(), "reason", ev.err)
		}
		se.close()
	case evPong:
		se.session.TouchPong()
	case evReadError, evWriteError:
		slog.DebugContext(ctx, "connection error", "sessionID", se.session.ID(), "err", ev.err)
		se.close()
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (se *SessionEndpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case se.ctrlCh <- ev:
	case <-ctx.Done():
	}
}
