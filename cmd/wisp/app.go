package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"wisp/domain"
	"wisp/internal"
	"wisp/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
)

// app is what every command but inspect runs on.
type app struct {
	log          *slog.Logger
	config       internal.Config
	db           *badger.DB
	orchestrator *runtime.Orchestrator
}

// openApp loads the configuration, opens the database and wires the orchestrator.
// The caller must call close, which also runs the deferred database cleanup.
func openApp(flags *rootFlags) (*app, error) {
	config, err := internal.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	local := resolveLocal(flags.as, config.UserID)
	orchestrator, err := runtime.NewOrchestrator(log, db, config, local)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("Application ready", "participant", local, "app", config.AppID)

	return &app{log: log, config: config, db: db, orchestrator: orchestrator}, nil
}

func (a *app) close() {
	a.orchestrator.Stop()
	a.log.Debug("Closing BadgerDB...")
	_ = a.db.Close()
}

// resolveLocal picks the --as flag, then WISP_USER_ID, then a fresh anonymous id.
func resolveLocal(as string, configured *string) domain.ParticipantID {
	switch {
	case as != "":
		return domain.ParticipantID(as)
	case configured != nil:
		return domain.ParticipantID(*configured)
	default:
		return domain.ParticipantID(uuid.NewString())
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
