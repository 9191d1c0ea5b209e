package game

import "github.com/go-gl/mathgl/mgl64"

const maxMouseDelta = 1e6

type ViewMode string

const (
	ViewFirstPerson ViewMode = "first-person"
	ViewThirdPerson ViewMode = "third-person"
)

func parseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewThirdPerson {
		return ViewThirdPerson
	}
	return ViewFirstPerson
}

type Keys struct {
	Forward   bool `json:"forward"`
	Back      bool `json:"back"`
	Left      bool `json:"left"`
	Right     bool `json:"right"`
	Jump      bool `json:"jump"`
	TurnLeft  bool `json:"turnLeft"`
	TurnRight bool `json:"turnRight"`
	Modifier  bool `json:"modifier"`
}

type MouseDelta struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (d MouseDelta) isZero() bool {
	return d.X == 0 && d.Y == 0
}

// InputState is owned by exactly one Player. Handlers update it field by
// field; the movement resolver consumes MouseDelta once per tick.
type InputState struct {
	Keys       Keys
	MouseDelta MouseDelta
	ViewMode   ViewMode
	CameraYaw  float64
}

func NewInputState() *InputState {
	return &InputState{ViewMode: ViewFirstPerson}
}

// Merge folds an updateInput payload into the state in place. Mouse deltas
// accumulate until the next tick consumes them.
func (s *InputState) Merge(msg UpdateInputMessage) {
	s.Keys.Forward = msg.Keys.Forward
	s.Keys.Back = msg.Keys.Back
	s.Keys.Left = msg.Keys.Left
	s.Keys.Right = msg.Keys.Right
	s.Keys.Jump = msg.Keys.Jump
	s.Keys.TurnLeft = msg.Keys.TurnLeft
	s.Keys.TurnRight = msg.Keys.TurnRight
	s.Keys.Modifier = msg.Keys.Modifier

	if msg.MouseDelta != nil && isFinite(msg.MouseDelta.X) && isFinite(msg.MouseDelta.Y) {
		s.MouseDelta.X = clampDelta(s.MouseDelta.X + clampDelta(msg.MouseDelta.X))
		s.MouseDelta.Y = clampDelta(s.MouseDelta.Y + clampDelta(msg.MouseDelta.Y))
	}

	s.ViewMode = parseViewMode(msg.ViewMode)
	if isFinite(msg.CameraYaw) {
		s.CameraYaw = NormalizeAngle(msg.CameraYaw)
	}
}

// clampDelta bounds the pending mouse delta so the total stays finite.
func clampDelta(d float64) float64 {
	return mgl64.Clamp(d, -maxMouseDelta, maxMouseDelta)
}
