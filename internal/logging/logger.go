// Package logging builds the tracker's logrus logger.
package logging

import "github.com/sirupsen/logrus"

// New creates a logger at the given level. An unknown level falls back
// to info rather than failing startup.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
