package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickDt = 1.0 / 30

func testPlayer() *Player {
	return newPlayer("p1", "tester", "#fff")
}

func horizontal(a, b Vec3) float64 {
	return math.Hypot(b.X-a.X, b.Z-a.Z)
}

func TestNormalizeAngleRange(t *testing.T) {
	for _, a := range []float64{0, -0.1, twoPi, 3 * twoPi, -7 * math.Pi, 1e9, -1e-18} {
		got := NormalizeAngle(a)
		assert.GreaterOrEqual(t, got, 0.0, "angle %v", a)
		assert.Less(t, got, twoPi, "angle %v", a)
	}
}

func TestYawStaysNormalizedUnderTurnsAndLooks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()

	for i := 0; i < 2000; i++ {
		p.Input.Keys.TurnLeft = rng.IntN(2) == 0
		p.Input.Keys.TurnRight = rng.IntN(3) == 0
		p.Input.MouseDelta = MouseDelta{X: (rng.Float64() - 0.5) * 5000, Y: (rng.Float64() - 0.5) * 5000}
		require.True(t, m.Step(p, tickDt))

		require.GreaterOrEqual(t, p.Yaw, 0.0)
		require.Less(t, p.Yaw, twoPi)
		require.Greater(t, p.Pitch, -math.Pi/2+PitchEpsilon/2)
		require.Less(t, p.Pitch, math.Pi/2-PitchEpsilon/2)
	}
}

func TestPitchClamp(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()

	p.Input.MouseDelta = MouseDelta{Y: -1e7}
	m.Step(p, tickDt)
	assert.InDelta(t, math.Pi/2-PitchEpsilon, p.Pitch, 1e-12)

	p.Input.MouseDelta = MouseDelta{Y: 1e7}
	m.Step(p, tickDt)
	assert.InDelta(t, -(math.Pi/2 - PitchEpsilon), p.Pitch, 1e-12)
}

func TestDiagonalSpeedMatchesSingleKey(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())

	single := testPlayer()
	single.Input.Keys.Forward = true
	start := single.Position
	m.Step(single, tickDt)
	singleDist := horizontal(start, single.Position)

	diagonal := testPlayer()
	diagonal.Input.Keys.Forward = true
	diagonal.Input.Keys.Right = true
	m.Step(diagonal, tickDt)
	diagonalDist := horizontal(start, diagonal.Position)

	assert.InDelta(t, 5.0/30, singleDist, 1e-9)
	assert.InDelta(t, singleDist, diagonalDist, 1e-9)
}

func TestForwardAtYawZeroMovesNegativeZ(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.Input.Keys.Forward = true

	m.Step(p, tickDt)

	assert.InDelta(t, 0, p.Position.X, 1e-12)
	assert.InDelta(t, -5.0/30, p.Position.Z, 1e-12)
}

func TestThirdPersonMovesRelativeToCamera(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.Yaw = 0
	p.Input.ViewMode = ViewThirdPerson
	p.Input.CameraYaw = math.Pi / 2
	p.Input.Keys.Forward = true

	m.Step(p, tickDt)

	assert.InDelta(t, -5.0/30, p.Position.X, 1e-9)
	assert.InDelta(t, 0, p.Position.Z, 1e-9)
	assert.Equal(t, 0.0, p.Yaw, "body yaw is untouched by camera-relative movement")
}

func TestPathArrival(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.SetMoveTarget(3, -4)

	dist := func() float64 { return math.Hypot(3-p.Position.X, -4-p.Position.Z) }
	prev := dist()
	for i := 0; i < 1000 && p.PathControlled; i++ {
		m.Step(p, tickDt)
		if !p.PathControlled {
			break
		}
		d := dist()
		require.Less(t, d, prev, "distance must strictly decrease")
		prev = d
	}

	require.False(t, p.PathControlled)
	assert.Nil(t, p.MoveTarget)
	assert.Less(t, dist()*dist(), pathArrivalSq)

	rest := p.Position
	m.Step(p, tickDt)
	assert.Equal(t, rest, p.Position)
}

func TestPathControlOverridesKeys(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.Input.Keys.Back = true
	p.SetMoveTarget(10, 0)

	m.Step(p, tickDt)

	assert.InDelta(t, 5.0/30, p.Position.X, 1e-9)
	assert.InDelta(t, 0, p.Position.Z, 1e-9)
	assert.InDelta(t, math.Pi/2, p.Yaw, 1e-9)
}

func TestJumpAndGroundClamp(t *testing.T) {
	tuning := DefaultTuning()
	m := NewMovementResolver(tuning)
	p := testPlayer()

	p.Input.Keys.Jump = true
	m.Step(p, tickDt)
	assert.Equal(t, tuning.Ground(), p.Position.Y)
	assert.Equal(t, tuning.JumpImpulse, p.VerticalVelocity)

	p.Input.Keys.Jump = false
	m.Step(p, tickDt)
	assert.Greater(t, p.Position.Y, tuning.Ground())

	for i := 0; i < 300; i++ {
		m.Step(p, tickDt)
	}
	assert.Equal(t, tuning.Ground(), p.Position.Y)
	assert.Equal(t, 0.0, p.VerticalVelocity)
}

func TestMouseDeltaConsumedOnce(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.Input.MouseDelta = MouseDelta{X: -100}

	m.Step(p, tickDt)
	yaw := p.Yaw
	assert.InDelta(t, 0.2, yaw, 1e-12)
	assert.Equal(t, MouseDelta{}, p.Input.MouseDelta)

	m.Step(p, tickDt)
	assert.Equal(t, yaw, p.Yaw)
}

func TestStepSkipsPlayerWithoutInput(t *testing.T) {
	m := NewMovementResolver(DefaultTuning())
	p := testPlayer()
	p.Input = nil
	start := p.Position

	assert.False(t, m.Step(p, tickDt))
	assert.Equal(t, start, p.Position)
}

func TestNonFiniteAnglesAreSanitized(t *testing.T) {
	for _, a := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, 0.0, NormalizeAngle(a))
	}
	assert.Equal(t, 0.0, ClampPitch(math.NaN()))
	assert.InDelta(t, math.Pi/2-PitchEpsilon, ClampPitch(math.Inf(1)), 1e-12)
}
