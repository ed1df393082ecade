package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger configures the shared logrus instance. JSON output so the
// gateway's logs line up with the rest of the platform.
func InitLogger() *logrus.Logger {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	return Log
}
