package game

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrRoomFull = errors.New("room is full")

// Client is the room's view of a connected session.
type Client interface {
	ID() string
	Encoding() Encoding
	Send(msg []byte)
	Close()
}

// EventSink receives replay snapshots and gameplay events. Implementations
// must not block the room goroutine.
type EventSink interface {
	Publish(subject string, data []byte)
	PublishCompressed(subject string, data []byte)
}

// Directory advertises running rooms to other services.
type Directory interface {
	Announce(s Summary)
	Withdraw(roomID string)
}

type Summary struct {
	ID             string `json:"id"`
	Implementation string `json:"implementation"`
	Players        int    `json:"players"`
	MaxPlayers     int    `json:"maxPlayers"`
	Entities       int    `json:"entities"`
	Structures     int    `json:"structures"`
	Tick           uint64 `json:"tick"`
}

type joinRequest struct {
	client Client
	opts   JoinOptions
}

type clientMessage struct {
	playerID string
	data     []byte
}

// Room is one authoritative simulation. All state is owned by the goroutine
// running Run; other goroutines talk to it through Connect, Disconnect and
// Submit.
type Room struct {
	ID string

	world    *World
	theme    Theme
	movement MovementResolver
	spawner  *Spawner
	rng      *rand.Rand
	clients  map[string]Client
	tick     uint64

	connect    chan joinRequest
	disconnect chan string
	messagesIn chan clientMessage
	done       chan struct{}

	sink      EventSink
	directory Directory
	onDispose func(id string)

	summary atomic.Pointer[Summary]
}

type RoomOption func(*Room)

func WithEventSink(sink EventSink) RoomOption {
	return func(r *Room) { r.sink = sink }
}

func WithDirectory(d Directory) RoomOption {
	return func(r *Room) { r.directory = d }
}

func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) { r.rng = rng }
}

func withDisposeHook(fn func(id string)) RoomOption {
	return func(r *Room) { r.onDispose = fn }
}

// NewRoom allocates the world, resolves the theme and runs its init hook.
// The tick loop starts with Run.
func NewRoom(id string, conf RoomConfig, opts ...RoomOption) (*Room, error) {
	theme, err := NewTheme(conf.Implementation)
	if err != nil {
		return nil, err
	}

	r := &Room{
		ID:         id,
		world:      NewWorld(conf),
		theme:      theme,
		clients:    make(map[string]Client),
		connect:    make(chan joinRequest),
		disconnect: make(chan string, 16),
		messagesIn: make(chan clientMessage, 256),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r.movement = NewMovementResolver(r.world.Config.Tuning)

	theme.Init(r.world, r.rng)
	if settings, ok := theme.SpawnSettings(r.world.Config.Tuning); ok {
		r.spawner = NewSpawner(settings, r.rng)
	}
	r.refreshSummary()

	log.WithField("room", id).WithField("implementation", theme.Name()).Info("Room created")
	return r, nil
}

func (r *Room) World() *World {
	return r.world
}

func (r *Room) Config() RoomConfig {
	return r.world.Config
}

// Summary is safe to call from any goroutine.
func (r *Room) Summary() Summary {
	return *r.summary.Load()
}

func (r *Room) refreshSummary() {
	r.summary.Store(&Summary{
		ID:             r.ID,
		Implementation: r.theme.Name(),
		Players:        len(r.world.Players),
		MaxPlayers:     r.world.Config.MaxPlayers,
		Entities:       len(r.world.Entities),
		Structures:     len(r.world.Structures),
		Tick:           r.tick,
	})
}

// Connect hands a new client to the room goroutine.
func (r *Room) Connect(c Client, opts JoinOptions) {
	select {
	case r.connect <- joinRequest{client: c, opts: opts}:
	case <-r.done:
		c.Close()
	}
}

func (r *Room) Disconnect(playerID string) {
	select {
	case r.disconnect <- playerID:
	case <-r.done:
	}
}

func (r *Room) Submit(playerID string, data []byte) {
	select {
	case r.messagesIn <- clientMessage{playerID: playerID, data: data}:
	case <-r.done:
	}
}

func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Join creates the player for c. When the room is full the client is told
// why and closed.
func (r *Room) Join(c Client, opts JoinOptions) (*Player, error) {
	if len(r.world.Players) >= r.world.Config.MaxPlayers {
		r.sendTo(c, OutMessage{Type: MsgClose, Data: CloseData{Reason: ErrRoomFull.Error()}})
		c.Close()
		return nil, ErrRoomFull
	}

	name := opts.Name
	if name == "" {
		name = "player-" + shortID(c.ID())
	}
	color := playerColors[len(r.world.Players)%len(playerColors)]
	p := newPlayer(c.ID(), name, color)
	r.theme.SetupPlayer(r.world, p, opts, r.rng)

	if err := r.world.AddPlayer(p); err != nil {
		c.Close()
		return nil, err
	}
	r.clients[p.ID] = c
	r.refreshSummary()

	log.WithField("room", r.ID).WithField("player", p.ID).Info("Player joined")
	r.sendTo(c, OutMessage{Type: MsgWelcome, Data: WelcomeData{PlayerID: p.ID, RoomID: r.ID, Config: r.world.Config}})
	return p, nil
}

// Leave removes the player and its client. Unknown ids are ignored.
func (r *Room) Leave(playerID string) {
	if c, ok := r.clients[playerID]; ok {
		c.Close()
		delete(r.clients, playerID)
	}
	if r.world.RemovePlayer(playerID) {
		log.WithField("room", r.ID).WithField("player", playerID).Info("Player left")
		r.refreshSummary()
	}
}

// HandleMessage routes one client message to its handler. Every failure is
// logged and leaves the world unchanged.
func (r *Room) HandleMessage(playerID string, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.WithError(err).WithField("room", r.ID).Debug("Error unmarshalling message")
		return
	}

	player, ok := r.world.Players[playerID]
	if !ok {
		log.WithField("room", r.ID).WithField("player", playerID).Debug("Message from unknown player")
		return
	}

	switch msg.Type {
	case MsgUpdateInput:
		var in UpdateInputMessage
		if !decodePayload(msg, &in) {
			return
		}
		r.handleUpdateInput(player, in)
	case MsgEntityInteraction:
		var in EntityInteractionMessage
		if !decodePayload(msg, &in) {
			return
		}
		r.handleEntityInteraction(player, in)
	case MsgMoveCommand:
		var in MoveCommandMessage
		if !decodePayload(msg, &in) {
			return
		}
		r.handleMoveCommand(player, in)
	case MsgPlaceStructure:
		var in PlaceStructureMessage
		if !decodePayload(msg, &in) {
			return
		}
		r.handlePlaceStructure(player, in)
	case MsgDemolishStructure:
		var in DemolishStructureMessage
		if !decodePayload(msg, &in) {
			return
		}
		r.handleDemolishStructure(player, in)
	default:
		log.WithField("room", r.ID).WithField("type", msg.Type).Debug("Unknown message type")
	}
}

// decodePayload leaves v zero-valued for an absent payload.
func decodePayload(msg Message, v any) bool {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return true
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.WithError(err).WithField("type", msg.Type).Debug("Error unmarshalling payload")
		return false
	}
	return true
}

func (r *Room) handleUpdateInput(p *Player, in UpdateInputMessage) {
	if p.Input == nil {
		p.Input = NewInputState()
	}
	p.Input.Merge(in)

	if in.Rotation != nil && isFinite(in.Rotation.Yaw) && isFinite(in.Rotation.Pitch) {
		p.Yaw = NormalizeAngle(in.Rotation.Yaw)
		p.Pitch = ClampPitch(in.Rotation.Pitch)
		p.Input.MouseDelta = MouseDelta{}
	}
}

func (r *Room) handleEntityInteraction(p *Player, in EntityInteractionMessage) {
	e, ok := r.world.Entities[in.EntityID]
	if !ok {
		log.WithField("room", r.ID).WithField("entity", in.EntityID).Debug("Interaction with unknown entity")
		return
	}
	if !r.theme.OnEntityInteraction(r.world, p, e, in.InteractionType) {
		return
	}
	r.refreshSummary()
	r.publishEvent("entity_interaction", map[string]any{
		"player":      p.ID,
		"entity":      in.EntityID,
		"interaction": in.InteractionType,
	})
}

func (r *Room) handleMoveCommand(p *Player, in MoveCommandMessage) {
	if !isFinite(in.X) || !isFinite(in.Z) {
		log.WithField("room", r.ID).WithField("player", p.ID).Debug("Rejected non-finite move target")
		return
	}
	p.SetMoveTarget(r.world.clampToMap(in.X), r.world.clampToMap(in.Z))
}

func (r *Room) handlePlaceStructure(p *Player, in PlaceStructureMessage) {
	s, err := r.world.PlaceStructure(p.ID, in.StructureKind, in.X, in.Y, in.Z, in.Rotation)
	if err != nil {
		log.WithError(err).WithField("room", r.ID).WithField("player", p.ID).Debug("Placement rejected")
		r.sendToPlayer(p.ID, OutMessage{Type: MsgPlacementResult, Data: PlacementResult{Success: false, Reason: err.Error()}})
		return
	}
	r.refreshSummary()
	r.sendToPlayer(p.ID, OutMessage{Type: MsgPlacementResult, Data: PlacementResult{Success: true, StructureID: s.ID}})
	r.publishEvent("structure_placed", s.Replicate())
}

func (r *Room) handleDemolishStructure(p *Player, in DemolishStructureMessage) {
	if err := r.world.DemolishStructure(p.ID, in.StructureID); err != nil {
		log.WithError(err).WithField("room", r.ID).WithField("player", p.ID).Debug("Demolish ignored")
		return
	}
	r.refreshSummary()
	r.publishEvent("structure_demolished", map[string]any{"player": p.ID, "structure": in.StructureID})
}

// Tick runs one simulation step: movement for every player in id order, the
// theme update, then the spawner.
func (r *Room) Tick(dt float64) {
	r.tick++

	limit := r.world.Config.MaxStepDistance
	for _, id := range r.world.PlayerIDs() {
		p := r.world.Players[id]
		prev := p.Position
		if !r.movement.Step(p, dt) {
			log.WithField("room", r.ID).WithField("player", id).Warn("Player has no input state, skipping")
			continue
		}
		if limit > 0 && exceedsStep(prev, p.Position, limit) {
			log.WithField("room", r.ID).WithField("player", id).Warn("Movement exceeded max step, reverting")
			p.Position.X, p.Position.Z = prev.X, prev.Z
		}
	}

	r.theme.Update(r.world, dt)

	if r.spawner != nil {
		count := r.world.CountEntities(r.spawner.Kind())
		r.spawner.Update(dt, count, func() {
			e := r.theme.SpawnEntity(r.world, r.rng)
			if e == nil {
				return
			}
			if err := r.world.AddEntity(e); err != nil {
				log.WithError(err).WithField("room", r.ID).Warn("Failed to add spawned entity")
			}
		})
	}
	r.refreshSummary()
}

func exceedsStep(prev, next Vec3, limit float64) bool {
	dx := next.X - prev.X
	dz := next.Z - prev.Z
	return dx*dx+dz*dz > limit*limit
}

func (r *Room) Snapshot() Snapshot {
	return r.world.Snapshot(r.ID, r.tick)
}

// Run drives the room until ctx is cancelled or the room has been empty for
// the configured grace period.
func (r *Room) Run(ctx context.Context) {
	conf := r.world.Config
	dt := conf.TickRate.Seconds()

	ticker := time.NewTicker(conf.TickRate)
	defer ticker.Stop()

	terminateTimer := time.NewTimer(time.Hour)
	terminateTimer.Stop()
	defer terminateTimer.Stop()

	directoryTicker := time.NewTicker(2 * time.Second)
	defer directoryTicker.Stop()

	defer r.dispose()

	for {
		select {
		case req := <-r.connect:
			if _, err := r.Join(req.client, req.opts); err == nil {
				terminateTimer.Stop()
			}
		case id := <-r.disconnect:
			r.Leave(id)
			if len(r.world.Players) == 0 {
				log.WithField("room", r.ID).Info("No players left, terminating in ", conf.TerminateAfter)
				terminateTimer.Reset(conf.TerminateAfter)
			}
		case m := <-r.messagesIn:
			r.HandleMessage(m.playerID, m.data)
		case <-ticker.C:
			r.Tick(dt)
			r.broadcastState()
			if conf.ReplayEveryTicks > 0 && r.tick%uint64(conf.ReplayEveryTicks) == 0 {
				r.publishReplay()
			}
		case <-directoryTicker.C:
			if r.directory != nil {
				go r.directory.Announce(r.Summary())
			}
		case <-terminateTimer.C:
			log.WithField("room", r.ID).Info("Terminating room due to inactivity")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Room) dispose() {
	close(r.done)
	for id, c := range r.clients {
		r.sendTo(c, OutMessage{Type: MsgClose, Data: CloseData{Reason: "Room closed"}})
		c.Close()
		delete(r.clients, id)
	}
	if r.directory != nil {
		r.directory.Withdraw(r.ID)
	}
	if r.onDispose != nil {
		r.onDispose(r.ID)
	}
	log.WithField("room", r.ID).Info("Room disposed")
}

func (r *Room) broadcastState() {
	if len(r.clients) == 0 {
		return
	}
	msg := OutMessage{Type: MsgState, Data: r.Snapshot()}
	encoded := make(map[Encoding][]byte, 2)
	for _, c := range r.clients {
		enc := c.Encoding()
		b, ok := encoded[enc]
		if !ok {
			var err error
			b, err = Encode(enc, msg)
			if err != nil {
				log.WithError(err).WithField("room", r.ID).Error("Error encoding snapshot")
				return
			}
			encoded[enc] = b
		}
		c.Send(b)
	}
}

func (r *Room) sendTo(c Client, msg OutMessage) {
	b, err := Encode(c.Encoding(), msg)
	if err != nil {
		log.WithError(err).WithField("room", r.ID).Error("Error encoding message")
		return
	}
	c.Send(b)
}

func (r *Room) sendToPlayer(playerID string, msg OutMessage) {
	if c, ok := r.clients[playerID]; ok {
		r.sendTo(c, msg)
	}
}

func (r *Room) publishReplay() {
	if r.sink == nil {
		return
	}
	b, err := msgpack.Marshal(r.Snapshot())
	if err != nil {
		log.WithError(err).WithField("room", r.ID).Error("Failed to marshal replay snapshot")
		return
	}
	r.sink.PublishCompressed("room_state."+r.ID, b)
}

func (r *Room) publishEvent(subject string, event any) {
	if r.sink == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"room": r.ID, "tick": r.tick, "event": event})
	if err != nil {
		log.WithError(err).WithField("room", r.ID).Error("Failed to marshal event")
		return
	}
	r.sink.Publish(subject, b)
}

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}
