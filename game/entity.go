package game

type Kind string

const (
	KindPlayer      Kind = "player"
	KindPickup      Kind = "pickup"
	KindStaticBlock Kind = "staticBlock"
	KindStructure   Kind = "structure"
)

type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

type Target struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Entity is the base record of every server-owned world object. Payload holds
// per-kind primitives (pickup operator, block claim owner, ...).
type Entity struct {
	ID       string
	Kind     Kind
	Position Vec3
	Yaw      float64
	Value    float64
	Color    string
	Payload  map[string]any
}

type Player struct {
	Entity

	Name             string
	Pitch            float64
	VerticalVelocity float64
	Input            *InputState
	MoveTarget       *Target
	PathControlled   bool

	ImplementationTag  string
	ImplementationData map[string]any
}

type Structure struct {
	Entity

	StructureKind StructureKind
	Dimensions    Dimensions
	Health        float64
	MaxHealth     float64
	OwnerID       string
}

const (
	defaultPlayerValue = 1
	spawnHeight        = 1
)

var playerColors = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
}

func newPlayer(id, name string, color string) *Player {
	return &Player{
		Entity: Entity{
			ID:       id,
			Kind:     KindPlayer,
			Position: Vec3{X: 0, Y: spawnHeight, Z: 0},
			Value:    defaultPlayerValue,
			Color:    color,
		},
		Name:               name,
		Input:              NewInputState(),
		ImplementationData: make(map[string]any),
	}
}

func (p *Player) SetMoveTarget(x, z float64) {
	p.MoveTarget = &Target{X: x, Z: z}
	p.PathControlled = true
}

func (p *Player) clearPath() {
	p.MoveTarget = nil
	p.PathControlled = false
}
