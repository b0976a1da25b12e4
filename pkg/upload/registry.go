package upload

import "sync"

// Registry is the process-wide mapping from upload id to live session.
// It is volatile: after a restart it starts empty and sessions are either
// rebuilt from the session store (when configured) or resumed via the
// partial-status fallback.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*UploadSession
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*UploadSession)}
}

// Put inserts or replaces the session under its id.
func (r *Registry) Put(session *UploadSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// Get returns the session for id, if present.
func (r *Registry) Get(id string) (*UploadSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Delete removes the session for id. Deleting an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// List returns a snapshot of all live sessions in unspecified order.
func (r *Registry) List() []*UploadSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*UploadSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
