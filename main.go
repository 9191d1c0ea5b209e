package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"arena3d/circuitbreaker"
	"arena3d/config"
	"arena3d/directory"
	"arena3d/game"
	"arena3d/grpc"
	"arena3d/logging"
	"arena3d/nats"
	"arena3d/server"
)

func main() {
	conf := config.Init()

	logFile, err := logging.Init(conf)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}
	defer logFile.Close()

	circuitbreaker.InitBreakers()

	publisher := nats.Connect(conf.NatsURL, circuitbreaker.NatsBreaker)
	defer publisher.Close()

	hostname, _ := os.Hostname()
	rooms := directory.New(conf.RedisURL, hostname, circuitbreaker.RedisBreaker)
	defer rooms.Close()

	roomConf, err := game.NewRoomConfig(conf)
	if err != nil {
		log.WithError(err).Fatal("Invalid room configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []game.RoomOption
	if publisher != nil {
		opts = append(opts, game.WithEventSink(publisher))
	}
	var lister server.Lister
	if rooms != nil {
		opts = append(opts, game.WithDirectory(rooms))
		lister = rooms
	}

	manager := game.NewManager(ctx, roomConf, opts...)
	if err := manager.EnsureRooms(conf.NumRooms); err != nil {
		log.WithError(err).Fatal("Failed to create rooms")
	}

	go func() {
		if err := grpc.Serve(ctx, conf.GRPCPort, manager); err != nil {
			log.WithError(err).Error("gRPC server stopped")
		}
	}()

	if err := server.Start(ctx, conf, manager, lister); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}
