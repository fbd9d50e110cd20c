package domain

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

//go:generate go tool mockgen -destination=./mocks/pubsub_mock.go -package=mocks . PubSub

type Topic string

func SessionTopic(id SessionID) Topic { return Topic("session:" + id.String()) }

func RoomTopic(id RoomID) Topic { return Topic("room:" + id.String()) }

// RoomControlTopic は join/leave 専用のトピックです。
func RoomControlTopic(id RoomID) Topic { return Topic("room:" + id.String() + ":ctrl") }

// Message は発信元セッションとフレーム 1 つです。
type Message struct {
	SessionID SessionID
	Data      []byte
}

// PubSub はセッションとルームをつなぐプロセス内のメッセージバスです。
type PubSub interface {
	Publish(ctx context.Context, topic Topic, msg Message)
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
}

const subscriberBuffer = 256

// SimplePubSub はトピックごとに購読チャネルを持つ PubSub です。
// 購読側が詰まっているときは待たずに捨てます。
type SimplePubSub struct {
	mu     sync.RWMutex
	topics map[Topic][]chan Message
}

var _ PubSub = (*SimplePubSub)(nil)

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{topics: make(map[Topic][]chan Message)}
}

func (p *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.topics[topic] {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber full, message dropped", "topic", topic)
		}
	}
}

func (p *SimplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	p.mu.Lock()
	p.topics[topic] = append(p.topics[topic], ch)
	p.mu.Unlock()
	return ch
}

func (p *SimplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.topics[topic]
	i := slices.IndexFunc(subs, func(c chan Message) bool { return (<-chan Message)(c) == ch })
	if i < 0 {
		return
	}
	p.topics[topic] = slices.Delete(subs, i, i+1)
	if len(p.topics[topic]) == 0 {
		delete(p.topics, topic)
	}
}
