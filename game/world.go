package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateID = errors.New("entity id already in use")

// RoomConfig is fixed at room creation and never mutated afterwards.
type RoomConfig struct {
	MapSize        float64       `json:"mapSize" msgpack:"mapSize"`
	MaxPlayers     int           `json:"maxPlayers" msgpack:"maxPlayers"`
	Implementation string        `json:"implementationName" msgpack:"implementationName"`
	TickRate       time.Duration `json:"-" msgpack:"-"`

	// MaxStepDistance enables the speed check when positive.
	MaxStepDistance  float64       `json:"-" msgpack:"-"`
	TerminateAfter   time.Duration `json:"-" msgpack:"-"`
	ReplayEveryTicks int           `json:"-" msgpack:"-"`
	Tuning           Tuning        `json:"-" msgpack:"-"`
}

func (c *RoomConfig) applyDefaults() {
	if c.MapSize <= 0 {
		c.MapSize = 40
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 16
	}
	if c.Implementation == "" {
		c.Implementation = "base"
	}
	if c.TickRate <= 0 {
		c.TickRate = time.Second / 30
	}
	if c.TerminateAfter <= 0 {
		c.TerminateAfter = 30 * time.Second
	}
	c.Tuning.applyDefaults()
}

// World is the plain keyed store of everything a room replicates. Only the
// owning room goroutine touches it.
type World struct {
	Config     RoomConfig
	Players    map[string]*Player
	Entities   map[string]*Entity
	Structures map[string]*Structure
}

func NewWorld(conf RoomConfig) *World {
	conf.applyDefaults()
	return &World{
		Config:     conf,
		Players:    make(map[string]*Player),
		Entities:   make(map[string]*Entity),
		Structures: make(map[string]*Structure),
	}
}

func (w *World) idInUse(id string) bool {
	if _, ok := w.Players[id]; ok {
		return true
	}
	if _, ok := w.Entities[id]; ok {
		return true
	}
	_, ok := w.Structures[id]
	return ok
}

func (w *World) AddPlayer(p *Player) error {
	if w.idInUse(p.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	w.Players[p.ID] = p
	return nil
}

func (w *World) RemovePlayer(id string) bool {
	if _, ok := w.Players[id]; !ok {
		return false
	}
	delete(w.Players, id)
	return true
}

// PlayerIDs returns player ids in a stable order for tick processing.
func (w *World) PlayerIDs() []string {
	ids := make([]string, 0, len(w.Players))
	for id := range w.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddEntity inserts a pickup or static block, assigning an id when empty.
func (w *World) AddEntity(e *Entity) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if w.idInUse(e.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	w.Entities[e.ID] = e
	return nil
}

func (w *World) RemoveEntity(id string) bool {
	if _, ok := w.Entities[id]; !ok {
		return false
	}
	delete(w.Entities, id)
	return true
}

func (w *World) CountEntities(kind Kind) int {
	n := 0
	for _, e := range w.Entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (w *World) AddStructure(s *Structure) error {
	if w.idInUse(s.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
	}
	w.Structures[s.ID] = s
	return nil
}

// RandomPoint returns a uniformly random XZ point inside the map square.
func (w *World) RandomPoint(r *rand.Rand) (float64, float64) {
	half := w.Config.MapSize / 2
	return (r.Float64()*2 - 1) * half, (r.Float64()*2 - 1) * half
}

func (w *World) clampToMap(v float64) float64 {
	half := w.Config.MapSize / 2
	if v < -half {
		return -half
	}
	if v > half {
		return half
	}
	return v
}
