package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"GAME_HTTP_PORT" envDefault:"8080"`
	GRPCPort string `env:"GAME_GRPC_PORT" envDefault:"8081"`
	NumRooms int    `env:"GAME_NUM_ROOMS" envDefault:"1"`

	LogJSON  bool   `env:"GAME_LOG_JSON" envDefault:"false"`
	LogLevel string `env:"GAME_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"GAME_LOG_FILE"`

	NatsURL  string `env:"GAME_NATS_URL"`
	RedisURL string `env:"GAME_REDIS_URL"`

	TickRateMs       int     `env:"GAME_TICK_MS" envDefault:"33"`
	MapSize          float64 `env:"GAME_MAP_SIZE" envDefault:"40"`
	MaxPlayers       int     `env:"GAME_MAX_PLAYERS" envDefault:"16"`
	Implementation   string  `env:"GAME_IMPLEMENTATION" envDefault:"numbers"`
	MaxStepDistance  float64 `env:"GAME_MAX_STEP_DISTANCE" envDefault:"0"`
	TerminateSeconds int     `env:"GAME_TERMINATE_SECONDS" envDefault:"30"`
	ReplayEveryTicks int     `env:"GAME_REPLAY_EVERY_TICKS" envDefault:"15"`
	TuningPath       string  `env:"GAME_TUNING_PATH"`
}

func Parse() (Config, error) {
	var conf Config
	err := env.Parse(&conf)
	return conf, err
}

// Init loads an optional .env file and parses the environment. It exits the
// process on invalid values.
func Init() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded")
	}

	conf, err := Parse()
	if err != nil {
		log.WithError(err).Fatal("Failed to parse config")
	}
	return conf
}
