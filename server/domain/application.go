package domain

import "context"

// Frame はルームが配送する 1 フレームです。To が空ならルーム全体に送ります。
type Frame struct {
	To   SessionID
	Data []byte
}

// Application はルームの tick 上で動くゲームロジックです。
// 全メソッドはルームのゴルーチンからだけ呼ばれます。
type Application interface {
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) error
	// Join は参加したセッションへ最初に送るフレームを返します。
	Join(ctx context.Context, sessionID SessionID) []Frame
	Leave(ctx context.Context, sessionID SessionID)
	Tick(ctx context.Context) []Frame
}
