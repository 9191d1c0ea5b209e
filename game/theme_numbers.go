package game

import (
	"math"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

const (
	InteractionCollect = "collect"

	payloadOperator = "operator"
	payloadOperand  = "operand"
	dataCollected   = "collected"

	numbersValueLimit = 1e6
)

var operatorColors = map[string]string{
	"+": "#4caf50",
	"-": "#f44336",
	"*": "#2196f3",
}

var operators = []string{"+", "-", "*"}

// NumbersTheme scatters operator pickups ("+3", "*2", ...). Collecting one
// applies it to the player's value.
type NumbersTheme struct {
	BaseTheme
}

func (NumbersTheme) Name() string { return "numbers" }

func (NumbersTheme) SetupPlayer(w *World, p *Player, _ JoinOptions, rng *rand.Rand) {
	p.ImplementationTag = "numbers"
	p.ImplementationData[dataCollected] = 0
	p.Position.X, p.Position.Z = w.RandomPoint(rng)
}

func (NumbersTheme) SpawnSettings(t Tuning) (SpawnSettings, bool) {
	return SpawnSettings{
		Kind:        KindPickup,
		MaxEntities: t.MaxSpawned,
		IntervalMin: t.SpawnIntervalMin,
		IntervalMax: t.SpawnIntervalMax,
	}, true
}

func (NumbersTheme) SpawnEntity(w *World, rng *rand.Rand) *Entity {
	op := operators[rng.IntN(len(operators))]
	operand := float64(1 + rng.IntN(5))
	if op == "*" {
		operand = float64(2 + rng.IntN(2))
	}
	x, z := w.RandomPoint(rng)
	return &Entity{
		Kind:     KindPickup,
		Position: Vec3{X: x, Y: spawnHeight, Z: z},
		Value:    operand,
		Color:    operatorColors[op],
		Payload: map[string]any{
			payloadOperator: op,
			payloadOperand:  operand,
		},
	}
}

func (NumbersTheme) OnEntityInteraction(w *World, p *Player, e *Entity, interaction string) bool {
	if interaction != InteractionCollect || e.Kind != KindPickup {
		return false
	}
	if !withinReach(p, e, w.Config.Tuning.InteractRange) {
		log.WithField("player", p.ID).WithField("entity", e.ID).Debug("Pickup out of reach")
		return false
	}
	op, _ := e.Payload[payloadOperator].(string)
	p.Value = applyOperator(p.Value, op, e.Value)

	n, _ := p.ImplementationData[dataCollected].(int)
	p.ImplementationData[dataCollected] = n + 1
	w.RemoveEntity(e.ID)
	return true
}

func applyOperator(value float64, op string, operand float64) float64 {
	switch op {
	case "+":
		value += operand
	case "-":
		value -= operand
	case "*":
		value *= operand
	}
	return math.Max(-numbersValueLimit, math.Min(numbersValueLimit, value))
}

