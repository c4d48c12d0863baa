package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codefionn/aifm/internal/config"
	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/lockfile"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/codefionn/aifm/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configFile  string
	hostFlag    string
	portFlag    int
	dirFlag     string
	logLevel    string
	logPath     string
	provider    string
	model       string
	openBrowser bool
)

// rootCmd serves the web UI when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "aifm",
	Short: "AI file manager",
	Long: `aifm serves a browser-based file manager with a chat assistant.

The assistant turns requests like "create a React project structure" into
file operations confined to the current working directory.

Use 'aifm help <command>' for more information on a specific command.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", consts.DefaultHost, "Address to listen on")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", consts.DefaultPort, "Port to listen on")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Initial working directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error, none")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "Log file, or - for stderr")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", config.ProviderGoogle, "Text generation provider: google, openai, anthropic")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model name")
	rootCmd.Flags().BoolVar(&openBrowser, "open", true, "Open the browser once the server is up")
}

func runServe(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	lock, err := lockfile.Acquire(a.cfg.LockPath())
	if err != nil {
		return fmt.Errorf("another aifm server may be using port %d: %w", a.cfg.Port, err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lockfile: %v", err)
		}
	}()

	srv, err := web.NewServer(a.cfg, a.files, a.agent)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	if err := srv.Start(); err != nil {
		srv.Close()
		return err
	}

	fmt.Fprintf(os.Stderr, "AI File Manager running on %s\n", srv.URL())
	fmt.Fprintf(os.Stderr, "Working directory: %s\n", a.files.WorkingDirectory())
	fmt.Fprintf(os.Stderr, "Tip: use the interface or the chat to change the working directory\n")

	if a.cfg.OpenBrowser && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := srv.OpenBrowser(); err != nil {
			logger.Warn("Failed to open browser: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.Timeout5Seconds)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Info("Server stopped after %s", time.Since(a.started).Round(time.Second))
	return nil
}
