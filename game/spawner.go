package game

import "math/rand/v2"

type SpawnSettings struct {
	Kind        Kind
	MaxEntities int
	IntervalMin float64
	IntervalMax float64
}

// Spawner creates at most one entity per elapsed interval and never lets the
// managed kind exceed MaxEntities.
type Spawner struct {
	settings SpawnSettings
	rng      *rand.Rand

	timer    float64
	interval float64
}

func NewSpawner(settings SpawnSettings, rng *rand.Rand) *Spawner {
	if settings.IntervalMax < settings.IntervalMin {
		settings.IntervalMax = settings.IntervalMin
	}
	s := &Spawner{settings: settings, rng: rng}
	s.interval = s.drawInterval()
	return s
}

func (s *Spawner) drawInterval() float64 {
	span := s.settings.IntervalMax - s.settings.IntervalMin
	return s.settings.IntervalMin + s.rng.Float64()*span
}

func (s *Spawner) Kind() Kind {
	return s.settings.Kind
}

// Update advances the timer. When the interval elapses and count is under the
// cap, spawn is invoked once. It reports whether spawn was called.
func (s *Spawner) Update(dt float64, count int, spawn func()) bool {
	s.timer += dt
	if s.timer < s.interval {
		return false
	}

	spawned := false
	if count < s.settings.MaxEntities {
		spawn()
		spawned = true
	}
	s.timer = 0
	s.interval = s.drawInterval()
	return spawned
}
