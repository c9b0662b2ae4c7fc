package server

import (
	"sort"
	"sync"
	"sync/atomic"
)

// SessionManager tracks live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	peak     int

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64

	onSessionCreate func(*Session)
	onSessionClose  func(*Session)
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (sm *SessionManager) Add(s *Session) {
	sm.mu.Lock()
	sm.sessions[s.ID] = s
	if len(sm.sessions) > sm.peak {
		sm.peak = len(sm.sessions)
	}
	cb := sm.onSessionCreate
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	if cb != nil {
		cb(s)
	}
}

// Remove unregisters a session. Removing an unknown id is a no-op.
func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	delete(sm.sessions, id)
	cb := sm.onSessionClose
	sm.mu.Unlock()

	if !ok {
		return
	}
	sm.totalClosed.Add(1)
	if cb != nil {
		cb(s)
	}
}

// Get returns a session by ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach calls fn for each session, oldest first, until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	sm.mu.RLock()
	list := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		list = append(list, s)
	}
	sm.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	for _, s := range list {
		if !fn(s) {
			return
		}
	}
}

// CloseAll closes every live session. Sessions remove themselves when
// their Run returns.
func (sm *SessionManager) CloseAll() {
	sm.ForEach(func(s *Session) bool {
		s.Close()
		return true
	})
}

// SetOnSessionCreate sets the callback invoked after a session is added.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionCreate = fn
}

// SetOnSessionClose sets the callback invoked after a session is removed.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionClose = fn
}

// Stats returns session manager statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peak,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}

// ManagerStats contains session manager statistics.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}
