package bus

import (
	"sync"

	"github.com/MarcVCE/TrabajoOpcional/internal/metrics"
)

// Event 是发送消息时广播的载荷，只在扇出瞬间存在，不做持久化。
type Event struct {
	Room  string `json:"nombreSala"`
	Body  string `json:"mensaje"`
	Email string `json:"email"`
}

const sendBuffer = 256

// Subscription 是一个绑定到单个房间的在线监听者，
// 订阅者只会收到订阅之后发布、且房间匹配的事件。
type Subscription struct {
	room  string
	email string
	ch    chan Event

	bus    *Bus
	closed bool
}

// Room 返回订阅绑定的房间名。
func (s *Subscription) Room() string { return s.room }

// Email 返回订阅时捕获的身份邮箱。
func (s *Subscription) Email() string { return s.email }

// Events 返回事件通道，订阅关闭后通道随之关闭。
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close 注销订阅并关闭事件通道，重复调用是安全的。
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus 按房间维护监听者集合的发布/订阅通道。
// 投递是尽力而为：缓冲满的订阅者会错过该事件，没有队列也没有重放。
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe 注册一个针对指定房间的监听者，事件从订阅时刻开始。
func (b *Bus) Subscribe(room, email string) *Subscription {
	s := &Subscription{room: room, email: email, ch: make(chan Event, sendBuffer), bus: b}
	b.mu.Lock()
	set, ok := b.subs[room]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[room] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()
	metrics.Subscriptions.Inc()
	return s
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if set, ok := b.subs[s.room]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.room)
		}
	}
	close(s.ch)
	metrics.Subscriptions.Dec()
}

// Publish 将事件广播给该房间的所有在线订阅者。
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[evt.Room] {
		select {
		case s.ch <- evt:
		default:
			// 缓冲已满，放弃本次投递
		}
	}
}

// Subscribers 返回房间当前的订阅者数量。
func (b *Bus) Subscribers(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[room])
}
