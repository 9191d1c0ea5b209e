package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

const (
	InteractionClaim = "claim"

	payloadClaimedBy = "claimedBy"
	dataClaims       = "claims"
)

// BlocksTheme lays a ring of static blocks at room creation. Players claim
// blocks; each claim moves ownership and scores the claimer.
type BlocksTheme struct {
	BaseTheme
}

func (BlocksTheme) Name() string { return "blocks" }

func (BlocksTheme) Init(w *World, _ *rand.Rand) {
	n := w.Config.Tuning.StaticBlocks
	radius := w.Config.MapSize / 4
	for i := 0; i < n; i++ {
		angle := twoPi * float64(i) / float64(n)
		err := w.AddEntity(&Entity{
			ID:       fmt.Sprintf("block-%d", i),
			Kind:     KindStaticBlock,
			Position: Vec3{X: radius * math.Sin(angle), Y: spawnHeight, Z: radius * math.Cos(angle)},
			Yaw:      NormalizeAngle(angle),
			Color:    "#9e9e9e",
			Payload:  map[string]any{payloadClaimedBy: ""},
		})
		if err != nil {
			log.WithError(err).WithField("block", i).Warn("Failed to add static block")
		}
	}
}

func (BlocksTheme) SetupPlayer(_ *World, p *Player, _ JoinOptions, _ *rand.Rand) {
	p.ImplementationTag = "blocks"
	p.ImplementationData[dataClaims] = 0
	p.Value = 0
}

func (BlocksTheme) OnEntityInteraction(w *World, p *Player, e *Entity, interaction string) bool {
	if interaction != InteractionClaim || e.Kind != KindStaticBlock {
		return false
	}
	if !withinReach(p, e, w.Config.Tuning.InteractRange) {
		return false
	}
	prev, _ := e.Payload[payloadClaimedBy].(string)
	if prev == p.ID {
		return false
	}
	if owner, ok := w.Players[prev]; ok {
		owner.Value--
		claims, _ := owner.ImplementationData[dataClaims].(int)
		owner.ImplementationData[dataClaims] = claims - 1
	}
	e.Payload[payloadClaimedBy] = p.ID
	e.Color = p.Color
	e.Value++

	p.Value++
	claims, _ := p.ImplementationData[dataClaims].(int)
	p.ImplementationData[dataClaims] = claims + 1
	return true
}
