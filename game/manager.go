package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrRoomNotFound = errors.New("room not found")

// Manager tracks the running rooms of this process. Rooms remove themselves
// once they dispose.
type Manager struct {
	ctx  context.Context
	base RoomConfig
	opts []RoomOption

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewManager(ctx context.Context, base RoomConfig, opts ...RoomOption) *Manager {
	base.applyDefaults()
	return &Manager{
		ctx:   ctx,
		base:  base,
		opts:  opts,
		rooms: make(map[string]*Room),
	}
}

// Create starts a room running implementation, or the configured default when
// implementation is empty.
func (m *Manager) Create(implementation string) (*Room, error) {
	conf := m.base
	if implementation != "" {
		conf.Implementation = implementation
	}

	id := uuid.New().String()
	opts := append([]RoomOption{withDisposeHook(m.remove)}, m.opts...)
	room, err := NewRoom(id, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	m.mu.Lock()
	m.rooms[id] = room
	n := len(m.rooms)
	m.mu.Unlock()

	go room.Run(m.ctx)
	log.WithField("room", id).Infof("There are now %d running rooms", n)
	return room, nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
}

func (m *Manager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return room, nil
}

func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) EnsureRooms(n int) error {
	for len(m.IDs()) < n {
		if _, err := m.Create(""); err != nil {
			return err
		}
	}
	return nil
}

// HandleConnection serves /connect/{roomID}.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	room, err := m.Get(roomID)
	if err != nil {
		log.WithField("room", roomID).Warn("Room not found")
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	ServeWebSocket(room, w, r)
}
