package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	mu            sync.RWMutex
	relationships map[string]*relationship.Record
	obligations   map[string][]*obligation.Obligation
	experience    map[string]map[player.Stat]int
	pingError     error
	saveError     error

	// Track calls for testing
	SaveRelationshipCalls int
	GrantExperienceCalls  int
	PrioritizeCalls       []string
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		relationships: make(map[string]*relationship.Record),
		obligations:   make(map[string][]*obligation.Obligation),
		experience:    make(map[string]map[player.Stat]int),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes SaveRelationship fail with err
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func relationshipKey(playerID, npcID string) string {
	return playerID + ":" + npcID
}

func (m *MockStorage) LoadRelationship(ctx context.Context, playerID, npcID string) (*relationship.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, exists := m.relationships[relationshipKey(playerID, npcID)]
	if !exists {
		return nil, nil
	}
	out := *rec
	out.Tokens = rec.Tokens.Clone()
	return &out, nil
}

func (m *MockStorage) SaveRelationship(ctx context.Context, rec *relationship.Record) error {
	if rec == nil {
		return errors.New("relationship cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRelationshipCalls++
	if m.saveError != nil {
		return m.saveError
	}
	stored := *rec
	stored.Tokens = rec.Tokens.Clone()
	m.relationships[relationshipKey(rec.PlayerID, rec.NPCID)] = &stored
	return nil
}

// PutRelationship seeds a record (for testing)
func (m *MockStorage) PutRelationship(rec *relationship.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships[relationshipKey(rec.PlayerID, rec.NPCID)] = rec
}

func (m *MockStorage) EnqueueObligation(ctx context.Context, playerID string, o *obligation.Obligation) error {
	if o == nil {
		return errors.New("obligation cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Priority = len(m.obligations[playerID])
	m.obligations[playerID] = append(m.obligations[playerID], o)
	return nil
}

func (m *MockStorage) PrioritizeObligations(ctx context.Context, playerID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrioritizeCalls = append(m.PrioritizeCalls, senderID)
	m.obligations[playerID] = Prioritize(m.obligations[playerID], senderID)
	return nil
}

func (m *MockStorage) ListObligations(ctx context.Context, playerID string) ([]*obligation.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*obligation.Obligation(nil), m.obligations[playerID]...), nil
}

func (m *MockStorage) GrantExperience(ctx context.Context, playerID string, stat player.Stat, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantExperienceCalls++
	if m.experience[playerID] == nil {
		m.experience[playerID] = make(map[player.Stat]int)
	}
	m.experience[playerID][stat] += amount
	return nil
}

func (m *MockStorage) LoadPlayerStats(ctx context.Context, playerID string) (*player.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	xp, exists := m.experience[playerID]
	if !exists {
		return nil, nil
	}
	stats := player.NewStats(playerID)
	for stat, n := range xp {
		stats.XP[stat] = n
	}
	return stats, nil
}
