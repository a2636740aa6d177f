// Package app wires the confnav binary together: it builds the logger and
// the configuration store selected by the user's settings and runs the TUI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrebassi/confnav/configs"
	"github.com/andrebassi/confnav/internal/adapters/repository"
	"github.com/andrebassi/confnav/internal/adapters/tui"
	"github.com/andrebassi/confnav/internal/domain/port"
	"github.com/andrebassi/confnav/internal/usecase"
)

// NewLogger returns a JSON logger writing to path. The TUI owns the
// terminal, so nothing is logged to stdout or stderr. An empty path
// disables logging.
func NewLogger(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewStore builds the ConfigStore for cfg.Backend.
func NewStore(cfg *configs.Config, logger *zap.Logger) (port.ConfigStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case configs.BackendAPI, "":
		opts := []repository.APIOption{repository.WithHTTPLogger(logger)}
		if cfg.Username != "" {
			opts = append(opts, repository.WithBasicAuth(cfg.Username, cfg.Password))
		}
		client, err := repository.NewAPIClient(cfg.Server, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case configs.BackendNacos:
		opts := []repository.APIOption{repository.WithHTTPLogger(logger)}
		if cfg.Username != "" {
			opts = append(opts, repository.WithBasicAuth(cfg.Username, cfg.Password))
		}
		store, err := repository.NewNacosStore(cfg.Server, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil

	case configs.BackendKubernetes:
		store, err := repository.NewKubeStore(cfg.Kubeconfig, repository.WithKubeLogger(logger))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)",
		cfg.Backend, configs.BackendAPI, configs.BackendNacos, configs.BackendKubernetes)
}

// Options configures Run.
type Options struct {
	Config *configs.Config
	Store  port.ConfigStore
	Logger *zap.Logger

	// Namespace and Group open the browser directly at that position.
	Namespace string
	Group     string

	// SaveConfig persists the remembered position on quit. Nil saves
	// Config to the default path.
	SaveConfig func(cfg *configs.Config) error

	// ProgramOptions are passed to tea.NewProgram after the defaults.
	ProgramOptions []tea.ProgramOption
}

// Run starts the TUI and blocks until it exits. A config watcher polls the
// entries the user opens or pins for the lifetime of the program.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Store == nil {
		return fmt.Errorf("initializing application: config store is required")
	}
	if opts.Config == nil {
		opts.Config = configs.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := usecase.NewConfigWatcher(opts.Store, opts.Config.Interval(), logger)
	go watcher.Run(ctx)

	model, err := tui.NewWithOptions(tui.Options{
		Store:      opts.Store,
		Config:     opts.Config,
		Logger:     logger,
		Watcher:    watcher,
		Namespace:  opts.Namespace,
		Group:      opts.Group,
		SaveConfig: opts.SaveConfig,
	})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	programOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)

	logger.Info("starting tui", zap.String("backend", opts.Config.Backend), zap.String("namespace", opts.Namespace))
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
