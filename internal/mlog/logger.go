package mlog

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var (
	l   = initLogger()
	nop = zerolog.Nop()
)

func initLogger() zerolog.Logger {
	var logger zerolog.Logger
	if ok, _ := strconv.ParseBool(os.Getenv("DNSWIRE_JSONLOGGER")); ok {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger = logger.Level(zerolog.InfoLevel).With().Timestamp().Logger()

	// Redirect std log
	stdRedirect := logger.With().Str("module", "std").Logger()
	log.SetFlags(0) // disable time/date
	log.SetPrefix("")
	log.SetOutput(stdRedirect)
	return logger
}

func L() *zerolog.Logger {
	return &l
}

func SetLvl(lvl zerolog.Level) {
	l = l.Level(lvl)
}

func Lvl() zerolog.Level {
	return l.GetLevel()
}

func Nop() *zerolog.Logger {
	return &nop
}
