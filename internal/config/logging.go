package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type LoggingConf struct {
	// Level accepts logrus level names (debug, info, warn, error).
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

func (conf LoggingConf) validate() error {
	if _, err := log.ParseLevel(conf.Level); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	switch strings.ToLower(conf.Format) {
	case "text", "json":
		return nil
	default:
		return errors.Errorf("unsupported log format %q", conf.Format)
	}
}

// ConfigureLogging applies conf to the standard logrus logger.
func ConfigureLogging(conf LoggingConf) error {
	level, err := log.ParseLevel(conf.Level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	if strings.EqualFold(conf.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
