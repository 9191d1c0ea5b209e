package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PitchEpsilon keeps pitch strictly inside the vertical look range.
	PitchEpsilon = 0.01

	pathArrivalSq = 0.1
	twoPi         = 2 * math.Pi
)

var maxPitch = math.Pi/2 - PitchEpsilon

// NormalizeAngle wraps a into [0, 2π). Non-finite angles become 0.
func NormalizeAngle(a float64) float64 {
	if !isFinite(a) {
		return 0
	}
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

func ClampPitch(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return mgl64.Clamp(p, -maxPitch, maxPitch)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type MovementResolver struct {
	tuning Tuning
}

func NewMovementResolver(t Tuning) MovementResolver {
	t.applyDefaults()
	return MovementResolver{tuning: t}
}

// Step advances one player by dt seconds. It reports false when the player
// has no input state and was skipped.
func (m MovementResolver) Step(p *Player, dt float64) bool {
	if p.Input == nil {
		return false
	}

	if p.PathControlled && p.MoveTarget != nil {
		m.seek(p, dt)
		return true
	}

	in := p.Input
	angle := p.Yaw
	if in.ViewMode == ViewThirdPerson {
		angle = in.CameraYaw
	}

	speed := m.tuning.MoveSpeed * dt
	forward := mgl64.Vec2{-math.Sin(angle), -math.Cos(angle)}
	right := mgl64.Vec2{math.Cos(angle), -math.Sin(angle)}

	var move mgl64.Vec2
	if in.Keys.Forward {
		move = move.Add(forward.Mul(speed))
	}
	if in.Keys.Back {
		move = move.Sub(forward.Mul(speed))
	}
	if in.Keys.Right {
		move = move.Add(right.Mul(speed))
	}
	if in.Keys.Left {
		move = move.Sub(right.Mul(speed))
	}

	longitudinal := in.Keys.Forward || in.Keys.Back
	lateral := in.Keys.Left || in.Keys.Right
	if longitudinal && lateral && move.Len() > 0 {
		move = move.Normalize().Mul(speed)
	}
	p.Position.X += move.X()
	p.Position.Z += move.Y()

	if in.Keys.TurnLeft {
		p.Yaw += m.tuning.TurnSpeed * dt
	}
	if in.Keys.TurnRight {
		p.Yaw -= m.tuning.TurnSpeed * dt
	}
	p.Yaw = NormalizeAngle(p.Yaw)

	m.integrateVertical(p, dt)

	if !in.MouseDelta.isZero() {
		p.Yaw = NormalizeAngle(p.Yaw - in.MouseDelta.X*m.tuning.MouseSensitivity)
		p.Pitch = ClampPitch(p.Pitch - in.MouseDelta.Y*m.tuning.MouseSensitivity)
		in.MouseDelta = MouseDelta{}
	}
	return true
}

func (m MovementResolver) seek(p *Player, dt float64) {
	delta := mgl64.Vec2{p.MoveTarget.X - p.Position.X, p.MoveTarget.Z - p.Position.Z}
	distSq := delta.Dot(delta)
	if distSq < pathArrivalSq {
		p.clearPath()
		return
	}

	dist := math.Sqrt(distSq)
	step := math.Min(m.tuning.PathSpeed*dt, dist)
	advance := delta.Mul(step / dist)
	p.Position.X += advance.X()
	p.Position.Z += advance.Y()
	p.Yaw = NormalizeAngle(math.Atan2(delta.X(), delta.Y()))
}

func (m MovementResolver) integrateVertical(p *Player, dt float64) {
	ground := m.tuning.Ground()

	p.VerticalVelocity -= m.tuning.Gravity * dt
	p.Position.Y += p.VerticalVelocity
	if p.Position.Y <= ground {
		p.Position.Y = ground
		p.VerticalVelocity = 0
	}

	if p.Input.Keys.Jump && p.Position.Y <= ground {
		p.VerticalVelocity = m.tuning.JumpImpulse
	}
}
