// Package store keeps per-session conversations.
package store

import (
	"context"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/RichardoC/bioexpert/internal/models"
)

// Store is a session-keyed conversation store. A session that has never
// been seen behaves as a fresh conversation holding only the system prompt.
type Store interface {
	Append(ctx context.Context, sessionID string, role models.Role, content string) error
	Reset(ctx context.Context, sessionID string) error
	RecentHistory(ctx context.Context, sessionID string, n int) ([]models.Message, error)
	Conversation(ctx context.Context, sessionID string) ([]models.Message, error)
}

type session struct {
	conv     *models.Conversation
	lastUsed time.Time
}

// Memory holds conversations in process memory. Sessions are bounded by
// count (least recently used goes first) and, when an idle timeout is set,
// by time since last use.
type Memory struct {
	systemPrompt string
	idle         time.Duration
	maxSessions  int
	now          func() time.Time

	mu       sync.Mutex
	sessions *lru.Cache
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithIdleTimeout drops sessions unused for longer than d. Zero disables it.
func WithIdleTimeout(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d > 0 {
			m.idle = d
		}
	}
}

// WithMaxSessions caps the number of sessions held. Zero means no cap.
func WithMaxSessions(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxSessions = n
		}
	}
}

func withClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(systemPrompt string, opts ...MemoryOption) *Memory {
	m := &Memory{
		systemPrompt: systemPrompt,
		maxSessions:  math.MaxInt32,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	// lru.New only fails for a non-positive size.
	m.sessions, _ = lru.New(m.maxSessions)
	return m
}

func (m *Memory) expired(s *session, now time.Time) bool {
	return m.idle > 0 && now.Sub(s.lastUsed) > m.idle
}

// lookup returns the live session for id, or nil. It must be called with mu held.
func (m *Memory) lookup(sessionID string, now time.Time) *session {
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	s := v.(*session)
	if m.expired(s, now) {
		m.sessions.Remove(sessionID)
		return nil
	}
	s.lastUsed = now
	return s
}

// conversation must be called with mu held.
func (m *Memory) conversation(sessionID string) *models.Conversation {
	now := m.now()
	if s := m.lookup(sessionID, now); s != nil {
		return s.conv
	}
	s := &session{conv: models.NewConversation(m.systemPrompt), lastUsed: now}
	m.sessions.Add(sessionID, s)
	return s.conv
}

func (m *Memory) Append(_ context.Context, sessionID string, role models.Role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversation(sessionID).Append(role, content)
	return nil
}

func (m *Memory) Reset(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversation(sessionID).Reset(m.systemPrompt)
	return nil
}

func (m *Memory) RecentHistory(_ context.Context, sessionID string, n int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.lookup(sessionID, m.now())
	if s == nil {
		return []models.Message{}, nil
	}
	return s.conv.RecentHistory(n), nil
}

func (m *Memory) Conversation(_ context.Context, sessionID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversation(sessionID).Messages(), nil
}

// Sweep removes idle sessions and returns how many were dropped.
func (m *Memory) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	// Keys are ordered from least to most recently used.
	for _, key := range m.sessions.Keys() {
		v, ok := m.sessions.Peek(key)
		if !ok {
			continue
		}
		if !m.expired(v.(*session), now) {
			break
		}
		m.sessions.Remove(key)
		removed++
	}
	return removed
}

// Sessions reports how many sessions are held.
func (m *Memory) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Len()
}
