//go:build !logless

// Package rlog is the slam-bot core's logging facade, shared by the
// orchestrator, explorer and CLI so that both ambient (informational) and
// diagnostic output share one sink.
package rlog

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
