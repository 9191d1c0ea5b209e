package game

import (
	"fmt"
	"time"

	"arena3d/config"
)

// NewRoomConfig builds the per-room configuration from the process config,
// loading the tuning file when one is set.
func NewRoomConfig(conf config.Config) (RoomConfig, error) {
	tuning := DefaultTuning()
	if conf.TuningPath != "" {
		t, err := LoadTuning(conf.TuningPath)
		if err != nil {
			return RoomConfig{}, fmt.Errorf("load tuning: %w", err)
		}
		tuning = t
	}

	if _, err := NewTheme(conf.Implementation); err != nil {
		return RoomConfig{}, err
	}

	rc := RoomConfig{
		MapSize:          conf.MapSize,
		MaxPlayers:       conf.MaxPlayers,
		Implementation:   conf.Implementation,
		TickRate:         time.Duration(conf.TickRateMs) * time.Millisecond,
		MaxStepDistance:  conf.MaxStepDistance,
		TerminateAfter:   time.Duration(conf.TerminateSeconds) * time.Second,
		ReplayEveryTicks: conf.ReplayEveryTicks,
		Tuning:           tuning,
	}
	rc.applyDefaults()
	return rc, nil
}
