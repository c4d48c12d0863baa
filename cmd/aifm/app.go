package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/codefionn/aifm/internal/config"
	"github.com/codefionn/aifm/internal/fs"
	"github.com/codefionn/aifm/internal/history"
	"github.com/codefionn/aifm/internal/llm"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/codefionn/aifm/internal/sandbox"
	"github.com/codefionn/aifm/internal/securemem"
	"github.com/spf13/cobra"
)

// app holds everything a command needs once configuration is resolved
type app struct {
	cfg     *config.Config
	files   *fs.Service
	agent   *agent.Agent
	history history.Store
	started time.Time
}

// loadConfig resolves the configuration: file, then .env and environment,
// then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = hostFlag
	}
	if flags.Changed("port") {
		cfg.Port = portFlag
	}
	if flags.Changed("dir") {
		cfg.WorkspaceDir = sandbox.ExpandShortcut(dirFlag)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-path") {
		cfg.LogPath = logPath
	}
	if flags.Changed("provider") {
		cfg.Provider = provider
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("open") {
		cfg.OpenBrowser = openBrowser
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("aifm starting")
	logger.Debug("Configuration loaded: workspace=%s, provider=%s, log_level=%s", cfg.WorkspaceDir, cfg.Provider, cfg.LogLevel)

	a := &app{cfg: cfg, started: time.Now()}
	if err := a.init(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	mgr, err := sandbox.NewManager(a.cfg.WorkspaceDir)
	if err != nil {
		return fmt.Errorf("failed to initialize working directory: %w", err)
	}
	for _, root := range a.cfg.AllowedRoots {
		if err := mgr.AddAllowedRoot(sandbox.ExpandShortcut(root)); err != nil {
			logger.Warn("Skipping allowed root %s: %v", root, err)
		}
	}
	a.files = fs.NewService(mgr)

	a.history, err = history.Open(a.cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	client, err := llm.NewClient(ctx, a.cfg.Provider, a.cfg.APIKey(a.cfg.Provider), config.APIKeyEnv(a.cfg.Provider), llm.Options{
		Model:           a.cfg.Model,
		Temperature:     a.cfg.Temperature,
		TopK:            a.cfg.TopK,
		TopP:            a.cfg.TopP,
		MaxOutputTokens: a.cfg.MaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", a.cfg.Provider, err)
	}
	if !a.cfg.HasAPIKey(a.cfg.Provider) {
		logger.Warn("%s is not set; chat requests will fail until it is", config.APIKeyEnv(a.cfg.Provider))
	}

	a.agent = agent.New(client, a.files, a.history)
	return nil
}

// Close releases the history store, wipes API keys and closes the log.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			logger.Warn("Failed to close history: %v", err)
		}
	}
	a.cfg.Close()
	securemem.Cleanup()
	if err := logger.Global().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", err)
	}
}
