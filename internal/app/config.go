package app

import (
	"errors"

	"github.com/vk/mdprune/internal/action"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Directory  string
	Action     action.Action
	Extensions []string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Directory == "" {
		return nil, errors.New("Directory is a required configuration field and cannot be empty")
	}
	if cfg.Action.Kind == action.Move && cfg.Action.Dir == "" {
		return nil, errors.New("the move action requires a target directory")
	}
	if cfg.WorkerCount < 1 {
		return nil, errors.New("WorkerCount must be at least 1")
	}

	return &cfg, nil
}
