package runtime

import (
	"action-relay/contract"
	"action-relay/domain"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Registry is the single source of truth for who is connected.
// It tracks live sessions, the display name given to each of them,
// and how many sessions were ever opened.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Session // map session ID -> Session
	names    map[string]string           // map session ID -> display name
	opened   atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.Session),
		names:    make(map[string]string),
	}
}

// Register adds the session to the live set and names it after the number of sessions
// opened before it. The counter never goes back, so two sessions never share a name
// even when they connect at the same time.
// Registering an already known session keeps its original name.
// count is the number of live sessions right after this registration.
func (r *Registry) Register(session contract.Session) (name string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if known, ok := r.names[session.ID()]; ok {
		return known, len(r.sessions)
	}

	name = domain.DisplayName(r.opened.Add(1) - 1)
	r.sessions[session.ID()] = session
	r.names[session.ID()] = name
	return name, len(r.sessions)
}

// Unregister removes the session and returns the name it had,
// with the number of live sessions left. Unknown sessions are ignored.
func (r *Registry) Unregister(session contract.Session) (name string, count int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok = r.names[session.ID()]
	delete(r.sessions, session.ID())
	delete(r.names, session.ID())
	return name, len(r.sessions), ok
}

func (r *Registry) DisplayName(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.names[sessionID]
	return name, ok
}

// CurrentCount returns the number of live sessions.
func (r *Registry) CurrentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// TotalOpened returns how many sessions were ever registered.
func (r *Registry) TotalOpened() int64 {
	return r.opened.Load()
}

// ForEach calls visit once per live session.
// It works on a snapshot: the lock is released before visiting, so a visitor may
// block on a slow session, or trigger Register/Unregister, without freezing the registry.
func (r *Registry) ForEach(visit func(session contract.Session)) {
	r.mu.RLock()
	snapshot := lo.Values(r.sessions)
	r.mu.RUnlock()

	for _, session := range snapshot {
		visit(session)
	}
}
