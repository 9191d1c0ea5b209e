package game

import "encoding/json"

const (
	MsgUpdateInput       = "updateInput"
	MsgEntityInteraction = "entityInteraction"
	MsgMoveCommand       = "moveCommand"
	MsgPlaceStructure    = "placeStructure"
	MsgDemolishStructure = "demolishStructure"

	MsgState           = "state"
	MsgWelcome         = "welcome"
	MsgPlacementResult = "placeStructureResult"
	MsgClose           = "close"
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Rotation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type UpdateInputMessage struct {
	Keys       Keys        `json:"keys"`
	MouseDelta *MouseDelta `json:"mouseDelta"`
	ViewMode   string      `json:"viewMode"`
	CameraYaw  float64     `json:"cameraYaw"`
	Rotation   *Rotation   `json:"rotation"`
}

type EntityInteractionMessage struct {
	EntityID        string `json:"entityId"`
	InteractionType string `json:"interactionType"`
}

type MoveCommandMessage struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

type PlaceStructureMessage struct {
	StructureKind StructureKind `json:"structureKind"`
	X             float64       `json:"x"`
	Y             float64       `json:"y"`
	Z             float64       `json:"z"`
	Rotation      float64       `json:"rotation"`
}

type DemolishStructureMessage struct {
	StructureID string `json:"structureId"`
}

// OutMessage is the envelope for everything the room sends to clients.
type OutMessage struct {
	Type string `json:"type" msgpack:"type"`
	Data any    `json:"data" msgpack:"data"`
}

type WelcomeData struct {
	PlayerID string     `json:"playerId" msgpack:"playerId"`
	RoomID   string     `json:"roomId" msgpack:"roomId"`
	Config   RoomConfig `json:"config" msgpack:"config"`
}

type PlacementResult struct {
	Success     bool   `json:"success" msgpack:"success"`
	StructureID string `json:"structureId,omitempty" msgpack:"structureId,omitempty"`
	Reason      string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

type CloseData struct {
	Reason string `json:"reason" msgpack:"reason"`
}
