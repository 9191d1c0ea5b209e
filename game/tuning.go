package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the simulation constants. Zero values fall back to defaults,
// so a tuning file only needs the keys it overrides.
type Tuning struct {
	MoveSpeed        float64  `yaml:"move_speed"`
	PathSpeed        float64  `yaml:"path_speed"`
	TurnSpeed        float64  `yaml:"turn_speed"`
	MouseSensitivity float64  `yaml:"mouse_sensitivity"`
	Gravity          float64  `yaml:"gravity"`
	JumpImpulse      float64  `yaml:"jump_impulse"`
	GroundY          *float64 `yaml:"ground_y"`

	SpawnIntervalMin float64 `yaml:"spawn_interval_min"`
	SpawnIntervalMax float64 `yaml:"spawn_interval_max"`
	MaxSpawned       int     `yaml:"max_spawned"`
	StaticBlocks     int     `yaml:"static_blocks"`
	InteractRange    float64 `yaml:"interact_range"`
}

func DefaultTuning() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}

// Ground is the height of the ground plane. An explicit 0 in a tuning file
// is kept.
func (t Tuning) Ground() float64 {
	if t.GroundY == nil {
		return 1
	}
	return *t.GroundY
}

func (t *Tuning) applyDefaults() {
	if t.MoveSpeed <= 0 {
		t.MoveSpeed = 5
	}
	if t.PathSpeed <= 0 {
		t.PathSpeed = 5
	}
	if t.TurnSpeed <= 0 {
		t.TurnSpeed = 2.5
	}
	if t.MouseSensitivity <= 0 {
		t.MouseSensitivity = 0.002
	}
	if t.Gravity <= 0 {
		t.Gravity = 0.5
	}
	if t.JumpImpulse <= 0 {
		t.JumpImpulse = 0.2
	}
	if t.GroundY == nil {
		ground := 1.0
		t.GroundY = &ground
	}
	if t.SpawnIntervalMin <= 0 {
		t.SpawnIntervalMin = 5
	}
	if t.SpawnIntervalMax < t.SpawnIntervalMin {
		t.SpawnIntervalMax = t.SpawnIntervalMin + 5
	}
	if t.MaxSpawned <= 0 {
		t.MaxSpawned = 20
	}
	if t.StaticBlocks <= 0 {
		t.StaticBlocks = 12
	}
	if t.InteractRange <= 0 {
		t.InteractRange = 3
	}
}

func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	t.applyDefaults()
	return t, nil
}
