package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrUnknownTheme = errors.New("unknown implementation")

type JoinOptions struct {
	Name string
}

// Theme carries the rules of a concrete game on top of the base room. The
// room calls every hook unconditionally; BaseTheme implements all of them as
// no-ops so a theme only overrides what it needs.
type Theme interface {
	Name() string
	Init(w *World, rng *rand.Rand)
	SetupPlayer(w *World, p *Player, opts JoinOptions, rng *rand.Rand)
	// OnEntityInteraction reports whether the interaction changed the world.
	OnEntityInteraction(w *World, p *Player, e *Entity, interaction string) bool
	// SpawnSettings opts the room into the spawn subsystem when ok is true.
	SpawnSettings(t Tuning) (settings SpawnSettings, ok bool)
	SpawnEntity(w *World, rng *rand.Rand) *Entity
	Update(w *World, dt float64)
}

func NewTheme(name string) (Theme, error) {
	switch name {
	case "", "base":
		return BaseTheme{}, nil
	case "numbers":
		return NumbersTheme{}, nil
	case "blocks":
		return BlocksTheme{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

type BaseTheme struct{}

func (BaseTheme) Name() string { return "base" }

func (BaseTheme) Init(*World, *rand.Rand) {}

func (BaseTheme) SetupPlayer(*World, *Player, JoinOptions, *rand.Rand) {}

func (BaseTheme) OnEntityInteraction(*World, *Player, *Entity, string) bool { return false }

func (BaseTheme) SpawnSettings(Tuning) (SpawnSettings, bool) { return SpawnSettings{}, false }

func (BaseTheme) SpawnEntity(*World, *rand.Rand) *Entity { return nil }

func (BaseTheme) Update(*World, float64) {}

func withinReach(p *Player, e *Entity, reach float64) bool {
	dx := p.Position.X - e.Position.X
	dz := p.Position.Z - e.Position.Z
	return dx*dx+dz*dz <= reach*reach
}
