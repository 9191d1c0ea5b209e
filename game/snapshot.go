package game

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/vmihailenco/msgpack/v5"
)

// Replicable is implemented by every world record that crosses the wire. The
// simulation structs stay tag-free; the views below define the wire shape.
type Replicable[V any] interface {
	Replicate() V
}

type EntityView struct {
	ID       string         `json:"id" msgpack:"id"`
	Kind     Kind           `json:"kind" msgpack:"kind"`
	Position Vec3           `json:"position" msgpack:"position"`
	Yaw      float64        `json:"yaw" msgpack:"yaw"`
	Value    float64        `json:"value" msgpack:"value"`
	Color    string         `json:"color" msgpack:"color"`
	Payload  map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

type PlayerView struct {
	EntityView

	Name              string         `json:"name" msgpack:"name"`
	Pitch             float64        `json:"pitch" msgpack:"pitch"`
	PathControlled    bool           `json:"isPathControlled" msgpack:"isPathControlled"`
	ImplementationTag string         `json:"implementationTag" msgpack:"implementationTag"`
	Data              map[string]any `json:"implementationData,omitempty" msgpack:"implementationData,omitempty"`
}

type StructureView struct {
	EntityView

	StructureKind StructureKind `json:"structureKind" msgpack:"structureKind"`
	Dimensions    Dimensions    `json:"dimensions" msgpack:"dimensions"`
	Health        float64       `json:"health" msgpack:"health"`
	MaxHealth     float64       `json:"maxHealth" msgpack:"maxHealth"`
	OwnerID       string        `json:"ownerId" msgpack:"ownerId"`
}

type Snapshot struct {
	RoomID     string                   `json:"roomId" msgpack:"roomId"`
	Tick       uint64                   `json:"tick" msgpack:"tick"`
	Config     RoomConfig               `json:"config" msgpack:"config"`
	Players    map[string]PlayerView    `json:"players" msgpack:"players"`
	Entities   map[string]EntityView    `json:"entities" msgpack:"entities"`
	Structures map[string]StructureView `json:"structures" msgpack:"structures"`
}

func copyPayload(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (e *Entity) Replicate() EntityView {
	return EntityView{
		ID:       e.ID,
		Kind:     e.Kind,
		Position: e.Position,
		Yaw:      e.Yaw,
		Value:    e.Value,
		Color:    e.Color,
		Payload:  copyPayload(e.Payload),
	}
}

func (p *Player) Replicate() PlayerView {
	return PlayerView{
		EntityView:        p.Entity.Replicate(),
		Name:              p.Name,
		Pitch:             p.Pitch,
		PathControlled:    p.PathControlled,
		ImplementationTag: p.ImplementationTag,
		Data:              copyPayload(p.ImplementationData),
	}
}

func (s *Structure) Replicate() StructureView {
	return StructureView{
		EntityView:    s.Entity.Replicate(),
		StructureKind: s.StructureKind,
		Dimensions:    s.Dimensions,
		Health:        s.Health,
		MaxHealth:     s.MaxHealth,
		OwnerID:       s.OwnerID,
	}
}

func replicateAll[T Replicable[V], V any](in map[string]T) map[string]V {
	out := make(map[string]V, len(in))
	for id, v := range in {
		out[id] = v.Replicate()
	}
	return out
}

// Snapshot captures the world for replication. The result shares nothing
// mutable with the world.
func (w *World) Snapshot(roomID string, tick uint64) Snapshot {
	return Snapshot{
		RoomID:     roomID,
		Tick:       tick,
		Config:     w.Config,
		Players:    replicateAll[*Player, PlayerView](w.Players),
		Entities:   replicateAll[*Entity, EntityView](w.Entities),
		Structures: replicateAll[*Structure, StructureView](w.Structures),
	}
}

type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

func ParseEncoding(s string) Encoding {
	if s == "msgpack" {
		return EncodingMsgpack
	}
	return EncodingJSON
}

func Encode(enc Encoding, v any) ([]byte, error) {
	switch enc {
	case EncodingMsgpack:
		return msgpack.Marshal(v)
	case EncodingJSON:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
}

// SnapshotSchema describes the JSON form of a state message payload.
func SnapshotSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(new(Snapshot))
	schema.Title = "Room snapshot"
	schema.Description = "Replicated room state sent with every state message."
	return schema
}
