package replication

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrUnknownEventKind = errors.New("replication: unknown event kind")
	ErrMalformedEvent   = errors.New("replication: malformed event")
)

// Marshal はイベント本体を msgpack で符号化します。種類はフレームヘッダ側で運びます。
func Marshal(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, ErrMalformedEvent
	}
	return msgpack.Marshal(ev)
}

// Unmarshal は kind に応じてイベントを復号します。
func Unmarshal(kind Kind, data []byte) (Event, error) {
	switch kind {
	case KindEntitySpawned:
		return decode[EntitySpawned](data)
	case KindEntityDespawned:
		return decode[EntityDespawned](data)
	case KindProjectileFired:
		return decode[ProjectileFired](data)
	case KindExplosionOccurred:
		return decode[ExplosionOccurred](data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventKind, uint8(kind))
	}
}

func decode[T Event](data []byte) (Event, error) {
	var ev T
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrMalformedEvent, ev.EventKind(), err)
	}
	return ev, nil
}
