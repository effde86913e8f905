package game

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	archives map[string]*Room
	profiles map[string]*Profile
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    make(map[string]*Room),
		archives: make(map[string]*Room),
		profiles: make(map[string]*Profile),
	}
}

func (s *memStore) PutRoom(_ context.Context, r *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
	return nil
}

func (s *memStore) GetRoom(_ context.Context, id string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *memStore) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *memStore) ListRooms(_ context.Context) ([]*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Room
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) ArchiveRoom(_ context.Context, r *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[r.ArchiveCode] = r
	delete(s.rooms, r.ID)
	return nil
}

func (s *memStore) GetArchive(_ context.Context, code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.archives[code]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *memStore) GetProfile(_ context.Context, playerID string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *memStore) PutProfile(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.PlayerID] = p
	return nil
}

// recordMessenger captures engine output for assertions.
type recordMessenger struct {
	mu         sync.Mutex
	broadcasts []string
	whispers   map[string][]string
}

func newRecordMessenger() *recordMessenger {
	return &recordMessenger{whispers: make(map[string][]string)}
}

func (m *recordMessenger) Broadcast(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, text)
	return nil
}

func (m *recordMessenger) Whisper(_ context.Context, playerID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.whispers[playerID] = append(m.whispers[playerID], text)
	return nil
}

func (m *recordMessenger) broadcastContaining(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.broadcasts {
		if strings.Contains(b, substr) {
			return true
		}
	}
	return false
}

func (m *recordMessenger) whisperContaining(playerID, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.whispers[playerID] {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T) (*Manager, *memStore, *recordMessenger) {
	t.Helper()
	st := newMemStore()
	msg := newRecordMessenger()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(Config{}, st, msg, logger)
	return m, st, msg
}

// rigRoom builds a live in-flight room with fixed seats and roles, bypassing
// the shuffle so tests are deterministic. Seat i+1 gets roles[i] and the
// player id "p<seat>".
func rigRoom(m *Manager, roles []Role) *Room {
	now := m.now()
	r := &Room{
		ID:      "WWG-test01",
		HostID:  "p1",
		GroupID: "g1",
		Players: make(map[string]*Player),
		Setup: Settings{
			PlayerCount: len(roles),
			Roles:       make(map[Role]int),
		},
		Phase:        PhaseNight,
		DayCount:     1,
		NightActions: make(map[ActionKey]string),
		Votes:        make(map[string]int),
		Potions:      WitchHasBoth,
		CreatedAt:    now,
		StartedAt:    &now,
		LastActivity: now,
	}
	for i, role := range roles {
		id := "p" + string(rune('0'+i+1))
		r.Players[id] = &Player{
			ID:           id,
			Name:         "Player" + string(rune('0'+i+1)),
			Seat:         i + 1,
			Role:         role,
			OriginalRole: role,
			Status:       StatusAlive,
		}
		r.Order = append(r.Order, id)
		r.Setup.Roles[role]++
	}
	m.rooms[r.ID] = r
	return r
}

func cmd(senderID string, verb Verb, args ...string) Command {
	return Command{
		SenderID:   senderID,
		SenderName: "Player-" + senderID,
		GroupID:    "g1",
		Verb:       verb,
		Args:       args,
	}
}

func fixedClock(m *Manager, start time.Time) *time.Time {
	now := start
	m.now = func() time.Time { return now }
	return &now
}
