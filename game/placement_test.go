package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld() *World {
	return NewWorld(RoomConfig{MapSize: 40, MaxPlayers: 4, Implementation: "base"})
}

func TestPlacementExampleScenario(t *testing.T) {
	w := testWorld()

	first, err := w.PlaceStructure("alice", StructureBuilding, 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "alice", first.OwnerID)
	assert.Equal(t, Dimensions{Width: 4, Height: 4, Depth: 4}, first.Dimensions)

	_, err = w.PlaceStructure("bob", StructureBuilding, 2, 0, 2, 0)
	assert.ErrorIs(t, err, ErrPlacementOverlap)
	assert.Len(t, w.Structures, 1)

	assert.True(t, w.IsPlacementValid(StructureBuilding, 10, 0, 10, 0))
	_, err = w.PlaceStructure("bob", StructureBuilding, 10, 0, 10, 0)
	require.NoError(t, err)
	assert.Len(t, w.Structures, 2)
}

func TestFootprintSwapsOnQuarterTurns(t *testing.T) {
	fp, ok := FootprintOf(StructureWall, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, Footprint{MinX: -2, MaxX: 2, MinZ: -0.25, MaxZ: 0.25}, fp)

	for _, rot := range []float64{math.Pi / 2, 3 * math.Pi / 2, -math.Pi / 2, math.Pi/2 + 1e-4} {
		fp, _ := FootprintOf(StructureWall, 0, 0, rot)
		assert.Equal(t, Footprint{MinX: -0.25, MaxX: 0.25, MinZ: -2, MaxZ: 2}, fp, "rotation %v", rot)
	}

	fp, _ = FootprintOf(StructureWall, 0, 0, math.Pi)
	assert.Equal(t, Footprint{MinX: -2, MaxX: 2, MinZ: -0.25, MaxZ: 0.25}, fp)

	fp, _ = FootprintOf(StructureWall, 0, 0, math.Pi/4)
	assert.Equal(t, Footprint{MinX: -2, MaxX: 2, MinZ: -0.25, MaxZ: 0.25}, fp)
}

func TestRotatedWallsDoNotCollide(t *testing.T) {
	w := testWorld()
	_, err := w.PlaceStructure("alice", StructureWall, 0, 0, 0, math.Pi/2)
	require.NoError(t, err)

	// An unrotated wall here would overlap; the rotated footprint is 0.5 wide.
	_, err = w.PlaceStructure("alice", StructureWall, 1, 0, 0, math.Pi/2)
	require.NoError(t, err)

	_, err = w.PlaceStructure("alice", StructureWall, 2, 0, 0, 0)
	assert.ErrorIs(t, err, ErrPlacementOverlap)
}

func TestPlacementRejectsUnknownKindAndOutOfBounds(t *testing.T) {
	w := testWorld()

	_, err := w.PlaceStructure("alice", "castle", 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrUnknownStructureKind)

	_, err = w.PlaceStructure("alice", StructureBuilding, 19, 0, 0, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = w.PlaceStructure("alice", StructureBuilding, math.NaN(), 0, 0, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	assert.Empty(t, w.Structures)
}

func TestAcceptedPlacementsNeverOverlap(t *testing.T) {
	w := testWorld()
	rng := rand.New(rand.NewPCG(7, 11))
	kinds := []StructureKind{StructureWall, StructureFloor, StructureBuilding, StructureTower, StructureRamp}

	for i := 0; i < 500; i++ {
		kind := kinds[rng.IntN(len(kinds))]
		x := (rng.Float64()*2 - 1) * 18
		z := (rng.Float64()*2 - 1) * 18
		rot := float64(rng.IntN(4)) * math.Pi / 2
		before := len(w.Structures)

		err := w.CheckPlacement(kind, x, 0, z, rot)
		_, placeErr := w.PlaceStructure("owner", kind, x, 0, z, rot)
		assert.Equal(t, err == nil, placeErr == nil)
		if placeErr != nil {
			require.Len(t, w.Structures, before)
		}
	}

	all := make([]*Structure, 0, len(w.Structures))
	for _, s := range w.Structures {
		all = append(all, s)
	}
	require.NotEmpty(t, all)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			require.False(t, all[i].Footprint().Overlaps(all[j].Footprint()),
				"%s and %s overlap", all[i].ID, all[j].ID)
		}
	}
}

func TestDemolishOwnerOnly(t *testing.T) {
	w := testWorld()
	s, err := w.PlaceStructure("alice", StructureTower, 5, 0, 5, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, w.DemolishStructure("bob", s.ID), ErrNotOwner)
	assert.Contains(t, w.Structures, s.ID)

	assert.ErrorIs(t, w.DemolishStructure("alice", "missing"), ErrStructureNotFound)

	require.NoError(t, w.DemolishStructure("alice", s.ID))
	assert.NotContains(t, w.Structures, s.ID)
}

func TestHugeRotationValidatesStoredFootprint(t *testing.T) {
	w := testWorld()
	_, err := w.PlaceStructure("alice", StructureWall, 3, 0, 0, 0)
	require.NoError(t, err)

	// Normalizes to a non-quarter turn, so the wall keeps its 4-wide footprint.
	rotation := 1.0000000000000025e+15
	require.False(t, isQuarterTurn(NormalizeAngle(rotation)))

	_, err = w.PlaceStructure("bob", StructureWall, 0, 0, 0, rotation)
	assert.ErrorIs(t, err, ErrPlacementOverlap)
	assert.Len(t, w.Structures, 1)
}

func TestNormalizedRotationMatchesStoredYaw(t *testing.T) {
	w := testWorld()
	rng := rand.New(rand.NewPCG(13, 17))
	for i := 0; i < 200; i++ {
		rot := (rng.Float64()*2 - 1) * 1e16
		x := (rng.Float64()*2 - 1) * 15
		z := (rng.Float64()*2 - 1) * 15
		want, _ := FootprintOf(StructureWall, x, z, NormalizeAngle(rot))
		s, err := w.PlaceStructure("owner", StructureWall, x, 0, z, rot)
		if err != nil {
			continue
		}
		require.Equal(t, want, s.Footprint())
	}
}
