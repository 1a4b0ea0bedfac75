package registry

import (
	"errors"
	"sync"

	"github.com/MarcVCE/TrabajoOpcional/internal/metrics"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotAMember   = errors.New("not a member")
)

// room 是注册表内部的可变状态，只能在持锁时访问。
type room struct {
	name     string
	messages []string
	members  []string
}

// RoomView 是对外输出的房间快照，与注册表内部状态无共享。
type RoomView struct {
	Name     string
	Messages []string
	Members  []string
}

// Registry 持有全部房间及其成员与消息列表。所有变更在单把锁下串行，
// 对外表现为原子操作；房间一经创建不会消失。
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
	order []string
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

func (r *room) view() RoomView {
	v := RoomView{
		Name:     r.name,
		Messages: make([]string, len(r.messages)),
		Members:  make([]string, len(r.members)),
	}
	copy(v.Messages, r.messages)
	copy(v.Members, r.members)
	return v
}

// List 按创建顺序返回所有房间的快照。
func (r *Registry) List() []RoomView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomView, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.rooms[name].view())
	}
	return out
}

// Find 按名称查找房间。
func (r *Registry) Find(name string) (RoomView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[name]
	if !ok {
		return RoomView{}, false
	}
	return rm.view(), true
}

// Ensure 返回已有房间或新建一个空房间。初始成员只在创建时写入：
// 加入已存在的房间不会改动成员列表，这是参考系统的既有行为。
// 并发调用同名 Ensure 只会创建一个房间。
func (r *Registry) Ensure(name, seedMember string) RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[name]
	if !ok {
		rm = &room{name: name}
		if seedMember != "" {
			rm.addMember(seedMember)
		}
		r.rooms[name] = rm
		r.order = append(r.order, name)
		metrics.Rooms.Inc()
	}
	return rm.view()
}

func (r *room) addMember(userID string) {
	for _, m := range r.members {
		if m == userID {
			return
		}
	}
	r.members = append(r.members, userID)
}

// AddMember 向房间加入成员，重复加入是幂等的空操作。
func (r *Registry) AddMember(name, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	rm.addMember(userID)
	return nil
}

// RemoveMember 将成员移出房间。房间不存在与成员不存在是两种不同的失败。
func (r *Registry) RemoveMember(name, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	for i, m := range rm.members {
		if m == userID {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			return nil
		}
	}
	return ErrNotAMember
}

// AppendMessage 向房间追加一条消息，保持插入顺序。
func (r *Registry) AppendMessage(name, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	rm.messages = append(rm.messages, body)
	return nil
}
