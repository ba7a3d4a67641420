package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppID          string  `env:"WISP_APP_ID,default=wisp-messenger-app-dev" validate:"required"`
	UserID         *string `env:"WISP_USER_ID"`
	BadgerFilepath string  `env:"BADGER_FILEPATH,default=./data/wisp" validate:"required"`
	LogLevel       string  `env:"LOG_LEVEL,default=INFO" validate:"required"`

	GenerativeProvider    string        `env:"GENERATIVE_PROVIDER,default=gemini" validate:"oneof=gemini openai anthropic"`
	GenerativeAPIKey      *string       `env:"GENERATIVE_API_KEY"`
	GenerativeModel       string        `env:"GENERATIVE_MODEL"`
	GenerativeBaseURL     string        `env:"GENERATIVE_BASE_URL" validate:"omitempty,url"`
	GenerativeTimeout     time.Duration `env:"GENERATIVE_TIMEOUT,default=30s" validate:"gt=0"`
	GenerativeMaxAttempts int           `env:"GENERATIVE_MAX_ATTEMPTS,default=3" validate:"min=1,max=10"`
	GenerativeBaseDelay   time.Duration `env:"GENERATIVE_BASE_DELAY,default=1s" validate:"gte=0"`

	SupportWebhookURL     *string       `env:"SUPPORT_WEBHOOK_URL" validate:"omitempty,url"`
	SupportWebhookKind    string        `env:"SUPPORT_WEBHOOK_KIND,default=discord" validate:"oneof=discord slack"`
	SupportWebhookTimeout time.Duration `env:"SUPPORT_WEBHOOK_TIMEOUT,default=10s" validate:"gt=0"`

	CensoredWords    string        `env:"CENSORED_WORDS"`
	CharReplacement  string        `env:"CHARACTER_REPLACEMENT,default=*"`
	PresenceInterval time.Duration `env:"PRESENCE_INTERVAL,default=1m" validate:"gt=0"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
}

// Load reads an optional .env file, then the environment.
// Blank optional values are treated as unset.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	config.UserID = blankToNil(config.UserID)
	config.GenerativeAPIKey = blankToNil(config.GenerativeAPIKey)
	config.SupportWebhookURL = blankToNil(config.SupportWebhookURL)

	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CharacterRune(config.CharReplacement); err != nil {
		return Config{}, err
	}
	return config, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
