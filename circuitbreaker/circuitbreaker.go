package circuitbreaker

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

var NatsBreaker *gobreaker.CircuitBreaker[any]
var RedisBreaker *gobreaker.CircuitBreaker[any]

func onChange(name string, from gobreaker.State, to gobreaker.State) {
	if to == gobreaker.StateOpen {
		log.WithField("type", "breaker").Error(name + " breaker is open")
	} else if to == gobreaker.StateHalfOpen {
		log.WithField("type", "breaker").Warn(name + " breaker is half open")
	} else if to == gobreaker.StateClosed {
		log.WithField("type", "breaker").Info(name + " breaker is closed")
	}
}

func New(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:          name,
		Timeout:       5 * time.Second,
		OnStateChange: onChange,
	})
}

func InitBreakers() {
	NatsBreaker = New("natsBreaker")
	RedisBreaker = New("redisBreaker")

	log.Info("Circuit breakers initialized")
}
