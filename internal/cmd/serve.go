package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Chargde-Porcupine/SHtack/internal/audit"
	"github.com/Chargde-Porcupine/SHtack/internal/clog"
	"github.com/Chargde-Porcupine/SHtack/internal/config"
	"github.com/Chargde-Porcupine/SHtack/internal/prompt"
	"github.com/Chargde-Porcupine/SHtack/internal/queue"
	"github.com/Chargde-Porcupine/SHtack/internal/server"
	"github.com/Chargde-Porcupine/SHtack/internal/term"
	"github.com/Chargde-Porcupine/SHtack/internal/token"
)

var (
	serveListen      string
	serveInteractive bool
	serveDebug       bool
)

// errStopRequested ends the serve errgroup when the operator presses Enter.
var errStopRequested = errors.New("stop requested from console")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Shtack API server",
	Long: `Run the Shtack API server in the foreground.

The server listens on server.listen from the config file (default :8000)
and runs until it receives SIGINT or SIGTERM. With --interactive it also
stops when a line is read from standard input.

Staged commands and minted paths live in memory only and are lost when the
server stops.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address, overriding server.listen")
	serveCmd.Flags().BoolVar(&serveInteractive, "interactive", false, "Stop when Enter is pressed")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Log at debug level")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	level := clog.ParseLevel(cfg.Log.Level)
	if serveDebug {
		level = clog.LevelDebug
	}
	if err := clog.Configure(cfg.Log.File, level, false); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = clog.Close() }()

	auditLogger, closeAudit := openAuditLog(cfg.Audit.File)
	defer closeAudit()

	srv := newServer(cfg, auditLogger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var console io.Reader
	hint := "Ctrl-C"
	if serveInteractive {
		console = cmd.InOrStdin()
		hint = "Enter"
		if !prompt.IsTerminal(console) {
			clog.Warn("--interactive with non-terminal stdin: the server stops at end of input")
		}
	}
	term.Status("Serving the Shtack API on %s (press %s to stop)", cfg.Server.Listen, hint)

	return runUntilStopped(ctx, srv, console)
}

// newServer builds a server from the effective configuration.
func newServer(cfg *config.GlobalConfig, auditLogger *audit.Logger) *server.Server {
	srv := server.NewServer(queue.New(), token.NewRegistry(), auditLogger)
	srv.Addr = cfg.Server.Listen
	srv.ReadHeaderTimeout, srv.ShutdownTimeout = cfg.Server.Durations()
	if cfg.Token.Wide {
		srv.Mint = token.GenerateWide
	}
	return srv
}

// openAuditLog opens the audit log at path. An empty path, or a file that
// cannot be opened, disables audit logging.
func openAuditLog(path string) (*audit.Logger, func()) {
	if path == "" {
		clog.Debug("audit logging disabled")
		return nil, func() {}
	}
	f, err := clog.OpenLogFile(path)
	if err != nil {
		clog.Warn("failed to open audit log file %s: %v", path, err)
		return nil, func() {}
	}
	clog.Info("audit logging enabled: %s", path)
	return audit.NewLogger(f), func() { _ = f.Close() }
}

// runUntilStopped runs srv until ctx is cancelled, serving fails, or (when
// console is non-nil) a line is read from console.
func runUntilStopped(ctx context.Context, srv *server.Server, console io.Reader) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})
	if console != nil {
		g.Go(func() error {
			return waitForLine(gctx, console)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errStopRequested) {
		return err
	}
	clog.Info("server stopped")
	return nil
}

// waitForLine returns errStopRequested once a line (or EOF) is read from r,
// or nil if ctx ends first. The read itself cannot be interrupted, so its
// goroutine lingers until input arrives.
func waitForLine(ctx context.Context, r io.Reader) error {
	line := make(chan struct{}, 1)
	go func() {
		_, _ = bufio.NewReader(r).ReadString('\n')
		line <- struct{}{}
	}()

	select {
	case <-ctx.Done():
		return nil
	case <-line:
		clog.Info("stop requested from console")
		return errStopRequested
	}
}
