package realtime

import "sync"

// Registry maps call SIDs to live sessions. It is the only process-wide
// realtime structure: a session inserts itself on stream start and removes
// itself on teardown, and nothing else mutates the map, so entries cannot
// outlive their call.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) add(callSID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[callSID] = s
}

func (r *Registry) remove(callSID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, callSID)
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
