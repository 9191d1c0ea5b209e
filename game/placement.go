package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var (
	ErrUnknownStructureKind = errors.New("unknown structure kind")
	ErrPlacementOverlap     = errors.New("structure footprint overlaps an existing structure")
	ErrOutOfBounds          = errors.New("structure footprint outside the map")
	ErrStructureNotFound    = errors.New("structure not found")
	ErrNotOwner             = errors.New("structure belongs to another player")
)

type StructureKind string

const (
	StructureWall     StructureKind = "wall"
	StructureFloor    StructureKind = "floor"
	StructureBuilding StructureKind = "building"
	StructureTower    StructureKind = "tower"
	StructureRamp     StructureKind = "ramp"
)

type Dimensions struct {
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
	Depth  float64 `json:"depth" msgpack:"depth"`
}

type structureSpec struct {
	dims      Dimensions
	maxHealth float64
	color     string
}

var structureTable = map[StructureKind]structureSpec{
	StructureWall:     {Dimensions{Width: 4, Height: 3, Depth: 0.5}, 100, "#8d6e63"},
	StructureFloor:    {Dimensions{Width: 4, Height: 0.2, Depth: 4}, 50, "#a1887f"},
	StructureBuilding: {Dimensions{Width: 4, Height: 4, Depth: 4}, 300, "#607d8b"},
	StructureTower:    {Dimensions{Width: 2, Height: 8, Depth: 2}, 200, "#455a64"},
	StructureRamp:     {Dimensions{Width: 4, Height: 2, Depth: 4}, 80, "#bcaaa4"},
}

func LookupStructure(kind StructureKind) (Dimensions, bool) {
	spec, ok := structureTable[kind]
	return spec.dims, ok
}

const quarterTurnEpsilon = 1e-3

// isQuarterTurn reports whether rotation is within epsilon of an odd multiple
// of π/2, in which case width and depth swap.
func isQuarterTurn(rotation float64) bool {
	q := rotation / (math.Pi / 2)
	n := math.Round(q)
	if math.Abs(q-n)*(math.Pi/2) > quarterTurnEpsilon {
		return false
	}
	return int64(n)%2 != 0
}

// Footprint is the axis-aligned XZ rectangle a structure covers.
type Footprint struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

func FootprintOf(kind StructureKind, x, z, rotation float64) (Footprint, bool) {
	dims, ok := LookupStructure(kind)
	if !ok {
		return Footprint{}, false
	}
	w, d := dims.Width, dims.Depth
	if isQuarterTurn(rotation) {
		w, d = d, w
	}
	return Footprint{
		MinX: x - w/2, MaxX: x + w/2,
		MinZ: z - d/2, MaxZ: z + d/2,
	}, true
}

// Overlaps treats touching edges as overlapping.
func (f Footprint) Overlaps(o Footprint) bool {
	return f.MinX <= o.MaxX && f.MaxX >= o.MinX &&
		f.MinZ <= o.MaxZ && f.MaxZ >= o.MinZ
}

func (f Footprint) within(half float64) bool {
	return f.MinX >= -half && f.MaxX <= half && f.MinZ >= -half && f.MaxZ <= half
}

func (s *Structure) Footprint() Footprint {
	fp, _ := FootprintOf(s.StructureKind, s.Position.X, s.Position.Z, s.Yaw)
	return fp
}

// CheckPlacement returns nil when a structure of kind may be placed at the
// given position and rotation. The footprint is taken at the normalized
// rotation, the same yaw a placed structure stores.
func (w *World) CheckPlacement(kind StructureKind, x, y, z, rotation float64) error {
	if !isFinite(x) || !isFinite(y) || !isFinite(z) || !isFinite(rotation) {
		return ErrOutOfBounds
	}
	fp, ok := FootprintOf(kind, x, z, NormalizeAngle(rotation))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStructureKind, kind)
	}
	if w.Config.MapSize > 0 && !fp.within(w.Config.MapSize/2) {
		return ErrOutOfBounds
	}
	for _, other := range w.Structures {
		if fp.Overlaps(other.Footprint()) {
			return ErrPlacementOverlap
		}
	}
	return nil
}

func (w *World) IsPlacementValid(kind StructureKind, x, y, z, rotation float64) bool {
	return w.CheckPlacement(kind, x, y, z, rotation) == nil
}

// PlaceStructure validates and inserts a structure owned by ownerID. The
// structure collection is left untouched when validation fails.
func (w *World) PlaceStructure(ownerID string, kind StructureKind, x, y, z, rotation float64) (*Structure, error) {
	if err := w.CheckPlacement(kind, x, y, z, rotation); err != nil {
		return nil, err
	}
	spec := structureTable[kind]
	s := &Structure{
		Entity: Entity{
			ID:       uuid.New().String(),
			Kind:     KindStructure,
			Position: Vec3{X: x, Y: y, Z: z},
			Yaw:      NormalizeAngle(rotation),
			Color:    spec.color,
		},
		StructureKind: kind,
		Dimensions:    spec.dims,
		Health:        spec.maxHealth,
		MaxHealth:     spec.maxHealth,
		OwnerID:       ownerID,
	}
	if err := w.AddStructure(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (w *World) DemolishStructure(requesterID, structureID string) error {
	s, ok := w.Structures[structureID]
	if !ok {
		return ErrStructureNotFound
	}
	if s.OwnerID != requesterID {
		return ErrNotOwner
	}
	delete(w.Structures, structureID)
	return nil
}
