package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/floorheat-backend-go/internal/render"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// MaxSessions bounds the number of live sessions
const MaxSessions = 256

// ErrTooMany is returned when no more sessions can be opened
var ErrTooMany = errors.New("too many open sessions")

// InputSource builds scene inputs from stored data
type InputSource interface {
	Input(req service.SceneRequest) (render.Input, error)
}

// Manager holds the live sessions and expires idle ones
type Manager struct {
	source InputSource
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	done     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager. Sessions idle longer than ttl are dropped
// by a background sweep until Close is called.
func NewManager(source InputSource, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &Manager{
		source:   source,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *Manager) cleanup() {
	interval := max(m.ttl/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			if n := m.sweep(now); n > 0 {
				log.Printf("[Session] Expired %d idle sessions", n)
			}
		}
	}
}

// sweep drops sessions idle since before now-ttl
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Close stops the background sweep
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Create opens a session on a canvas of the given size
func (m *Manager) Create(req service.SceneRequest, canvas transform.Size) (*Session, error) {
	in, err := m.source.Input(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= MaxSessions {
		return nil, ErrTooMany
	}
	s := newSession(uuid.NewString(), req, canvas, in, time.Now())
	m.sessions[s.ID] = s
	log.Printf("[Session] Opened %s for store %d floor %d (%s, %d samples)",
		s.ID, req.StoreID, req.Filter.Floor, in.Samples.Mode(), in.Samples.Len())
	return s, nil
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes a session, reporting whether it existed
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reload rebuilds the data inputs of a session from a new selection. The
// store is fixed for the lifetime of a session.
func (m *Manager) Reload(s *Session, req service.SceneRequest) error {
	req.StoreID = s.Request().StoreID
	in, err := m.source.Input(req)
	if err != nil {
		return fmt.Errorf("failed to reload scene: %w", err)
	}
	s.reload(req, in)
	return nil
}
