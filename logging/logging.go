package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"arena3d/config"
)

// Init configures the global logrus logger. When a log file is configured
// output is also written to a rotating file, which the caller closes.
func Init(conf config.Config) (io.Closer, error) {
	if conf.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	if conf.LogFile == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	file := &lumberjack.Logger{
		Filename:   conf.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return file, nil
}
