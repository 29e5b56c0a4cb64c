// Package presence tracks which live connections belong to which user.
package presence

import "sync"

// Conn 一个实时连接（一个设备会话）
type Conn interface {
	ID() string
	Send(event string, payload interface{}) error
}

// Registry userId -> 连接集合。单进程内存实现不跨实例共享。
type Registry interface {
	Join(userID string, c Conn)
	Leave(c Conn)
	ConnectionsFor(userID string) []Conn
	Online(userID string) bool
}

type memoryRegistry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Conn
	owner  map[string]string
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		byUser: map[string]map[string]Conn{},
		owner:  map[string]string{},
	}
}

// Join 幂等；连接已挂在其他用户下时先移走，保证一个连接只属于一个用户
func (r *memoryRegistry) Join(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	if prev, ok := r.owner[id]; ok && prev != userID {
		r.removeLocked(prev, id)
	}
	set := r.byUser[userID]
	if set == nil {
		set = map[string]Conn{}
		r.byUser[userID] = set
	}
	set[id] = c
	r.owner[id] = userID
}

// Leave 未 Join 过的连接直接忽略
func (r *memoryRegistry) Leave(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	userID, ok := r.owner[id]
	if !ok {
		return
	}
	r.removeLocked(userID, id)
}

func (r *memoryRegistry) removeLocked(userID, connID string) {
	delete(r.owner, connID)
	set := r.byUser[userID]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

// ConnectionsFor 返回快照，调用方可在锁外发送
func (r *memoryRegistry) ConnectionsFor(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *memoryRegistry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}
