package adapterwebsocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/coder/websocket"

	"skirmish/server/domain"
)

type wsTransport struct {
	conn *websocket.Conn
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	return &wsTransport{conn: conn}
}

// Read は次のバイナリメッセージを返します。フレームは全てバイナリなのでテキストは読み飛ばします。
// 相手からの正常なクローズは io.EOF になります。
func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := t.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil, io.EOF
			}
			return nil, err
		}
		if typ != websocket.MessageBinary {
			slog.DebugContext(ctx, "text message ignored", "len", len(data))
			continue
		}
		return data, nil
	}
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, data)
}

// Close は既に閉じている接続に対しては何もしません。
func (t *wsTransport) Close(code int32, reason string) error {
	err := t.conn.Close(websocket.StatusCode(code), reason)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
