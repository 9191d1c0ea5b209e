package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"arena3d/game"
)

const (
	keyPrefix = "rooms:"
	ttl       = 10 * time.Second
	timeout   = 2 * time.Second
)

type Listing struct {
	game.Summary
	Host string `json:"host"`
}

// Directory advertises this process's rooms in Redis. Entries expire on their
// own when the process stops refreshing them.
type Directory struct {
	client  *redis.Client
	host    string
	breaker *gobreaker.CircuitBreaker[any]
}

func New(redisURL, host string, breaker *gobreaker.CircuitBreaker[any]) *Directory {
	if redisURL == "" {
		log.Info("No redis server configured, room directory disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.WithError(err).Error("Failed to connect to Redis")
	} else {
		log.Info("Connected to Redis at ", redisURL)
	}

	return &Directory{client: client, host: host, breaker: breaker}
}

func Key(roomID string) string {
	return keyPrefix + roomID
}

func (d *Directory) execute(fn func(ctx context.Context) error) error {
	run := func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return nil, fn(ctx)
	}
	if d.breaker == nil {
		_, err := run()
		return err
	}
	_, err := d.breaker.Execute(run)
	return err
}

func (d *Directory) Announce(s game.Summary) {
	if d == nil {
		return
	}
	b, err := json.Marshal(Listing{Summary: s, Host: d.host})
	if err != nil {
		log.WithError(err).Error("Failed to marshal room listing")
		return
	}
	err = d.execute(func(ctx context.Context) error {
		return d.client.Set(ctx, Key(s.ID), b, ttl).Err()
	})
	if err != nil {
		log.WithError(err).WithField("room", s.ID).Debug("Failed to announce room")
	}
}

func (d *Directory) Withdraw(roomID string) {
	if d == nil {
		return
	}
	err := d.execute(func(ctx context.Context) error {
		return d.client.Del(ctx, Key(roomID)).Err()
	})
	if err != nil {
		log.WithError(err).WithField("room", roomID).Warn("Failed to withdraw room")
	}
}

// List returns every room currently advertised by any process.
func (d *Directory) List(ctx context.Context) ([]Listing, error) {
	if d == nil {
		return nil, nil
	}
	var listings []Listing
	iter := d.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := d.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var l Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			log.WithError(err).WithField("key", iter.Val()).Warn("Skipping malformed room listing")
			continue
		}
		listings = append(listings, l)
	}
	return listings, iter.Err()
}

func (d *Directory) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}
