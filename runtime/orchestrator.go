// Package runtime assembles the stores, repositories and services of one wisp process
// and runs its long-lived workers under supervision. It holds no business rules.
package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"wisp/ai"
	"wisp/contract"
	"wisp/domain"
	"wisp/errors"
	"wisp/internal"
	"wisp/moderation"
	"wisp/repositories"
	"wisp/runtime/workers"
	"wisp/services"
	"wisp/storage"
	"wisp/support"

	"github.com/dgraph-io/badger/v4"
)

//go:embed censored/*
var censoredFolder embed.FS

type Orchestrator struct {
	log        *slog.Logger
	config     internal.Config
	local      domain.ParticipantID
	store      *storage.BadgerStore
	supervisor *workers.Supervisor
	users      repositories.IUserRepository
	messages   repositories.IMessageRepository
	chat       *services.ChatService
	directory  *services.DirectoryService
	support    *services.SupportService
}

// NewOrchestrator wires every component on top of an opened Badger database.
// Missing generative or webhook credentials only disable the matching feature.
func NewOrchestrator(log *slog.Logger, db *badger.DB, config internal.Config, local domain.ParticipantID) (*Orchestrator, error) {
	store := storage.NewBadgerStore(db, log)
	paths := repositories.NewPaths(config.AppID)
	users := repositories.NewUserRepository(store, paths, log)
	messages := repositories.NewMessageRepository(store, paths, log)

	o := &Orchestrator{
		log:        log.With("participant", local),
		config:     config,
		local:      local,
		store:      store,
		supervisor: workers.NewSupervisor(log, config.RestartInterval),
		users:      users,
		messages:   messages,
	}

	moderator, err := o.prepareModeration(db)
	if err != nil {
		return nil, err
	}
	assistant, err := o.prepareAssistant(moderator)
	if err != nil {
		return nil, err
	}
	sender, err := support.NewSender(support.Kind(config.SupportWebhookKind), config.SupportWebhookURL, config.SupportWebhookTimeout)
	if err != nil {
		return nil, err
	}

	o.chat = services.NewChatService(log, messages, assistant, local)
	o.directory = services.NewDirectoryService(log, users, messages, local)
	o.support = services.NewSupportService(log, sender, local)
	return o, nil
}

// prepareModeration merges the shipped word lists with CENSORED_WORDS, persists them
// in the blacklist and builds the Aho-Corasick automaton from what is stored.
func (o *Orchestrator) prepareModeration(db *badger.DB) (*moderation.Moderator, error) {
	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored", moderation.SplitWords(o.config.CensoredWords)...)
	if err != nil {
		return nil, err
	}
	o.log.Debug("Censored lists loaded",
		"languages", strings.Join(data.Languages, ","), "words", len(data.Words))

	if err := moderation.SeedBlacklist(db, data.Words); err != nil {
		return nil, fmt.Errorf("%w: seeding blacklist: %w", errors.ErrStore, err)
	}
	words, err := moderation.LoadBlacklist(db)
	if err != nil {
		return nil, fmt.Errorf("%w: loading blacklist: %w", errors.ErrStore, err)
	}

	replacement, err := internal.CharacterRune(o.config.CharReplacement)
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(words, replacement, o.log)
}

func (o *Orchestrator) prepareAssistant(moderator *moderation.Moderator) (*ai.Assistant, error) {
	generator, err := ai.NewGenerator(ai.GeneratorConfig{
		Provider: ai.Provider(o.config.GenerativeProvider),
		APIKey:   o.config.GenerativeAPIKey,
		Model:    o.config.GenerativeModel,
		BaseURL:  o.config.GenerativeBaseURL,
		Timeout:  o.config.GenerativeTimeout,
	})
	if err != nil {
		return nil, err
	}
	if generator == nil {
		o.log.Info("No generative api key, suggestions and rewrites are disabled")
	}
	invoker := ai.NewInvoker(o.log, generator, ai.RetryPolicy{
		MaxAttempts: o.config.GenerativeMaxAttempts,
		BaseDelay:   o.config.GenerativeBaseDelay,
	})
	return ai.NewAssistant(o.log, invoker, moderator), nil
}

func (o *Orchestrator) Local() domain.ParticipantID {
	return o.local
}

func (o *Orchestrator) Chat() *services.ChatService {
	return o.chat
}

func (o *Orchestrator) Directory() *services.DirectoryService {
	return o.directory
}

func (o *Orchestrator) Support() *services.SupportService {
	return o.support
}

// Start runs the presence worker and the given workers until ctx ends or Stop is called.
// It blocks.
func (o *Orchestrator) Start(ctx context.Context, extra ...contract.Worker) {
	o.supervisor.Add(workers.NewPresenceWorker(o.log, o.users, o.local, o.config.PresenceInterval))
	o.supervisor.Add(extra...)

	o.log.Info("Starting supervised workers")
	o.supervisor.Run(ctx)
}

// Stop cancels the workers and ends every live subscription.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
	o.store.Close()
}
