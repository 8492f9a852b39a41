package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/pathlist"
	"github.com/xelth-com/ecksnap/internal/watcher"
)

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
	watchNotify   bool
)

// minWatchInterval guards against busy-polling the tree.
const minWatchInterval = time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rebuild the snapshot whenever the project changes",
	Long: `Watch polls the project tree and regenerates the snapshot artifact
every time files are added, removed, or modified. One snapshot is
written immediately on start, so the latest artifact always reflects
the tree.

All snapshot-shaping flags of create apply here too.

Examples:
  ecksnap watch                        # run in foreground (ctrl-c to stop)
  ecksnap watch --interval 10s         # poll every 10 seconds
  ecksnap watch --daemon --notify      # background mode with desktop alerts
  ecksnap watch --stop                 # stop the background daemon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Poll interval as duration string (default: config watch.interval)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send a desktop notification after each rebuild")
	addCreateFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	if flagNoColor {
		output.SetNoColor(true)
	}
	log := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rootArg := "."
	if len(args) == 1 {
		rootArg = args[0]
	}
	if pathlist.IsRemoteURL(rootArg) {
		return fmt.Errorf("cannot watch a remote repository, clone it first")
	}

	req, err := buildCreateRequest(cmd, cfg, rootArg, "")
	if err != nil {
		return err
	}

	interval, err := cfg.WatchInterval()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		interval, err = time.ParseDuration(watchInterval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
		}
	}
	if interval < minWatchInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}

	if watchDaemon {
		return runDaemon(req, interval, log)
	}

	return runForeground(req, interval, log)
}

// buildOnChange returns the change callback: rebuild the snapshot,
// record the run, and report through the mode's output channel.
func buildOnChange(ctx context.Context, req *createRequest, log zerolog.Logger, report func(string, ...any)) func(watcher.Change) {
	return func(c watcher.Change) {
		report("%s", c.Summary())

		outcome, err := performCreate(ctx, req, log)
		if err != nil {
			log.Error().Err(err).Msg("snapshot rebuild failed")
			report("rebuild failed: %v", err)
			return
		}
		recordRun(req, outcome, log)
		report("wrote %s (%s)", outcome.Artifact, output.Bytes(int64(outcome.Bytes)))

		if watchNotify {
			_ = watcher.Notify("Snapshot updated", fmt.Sprintf("%s, %d files",
				filepath.Base(outcome.Artifact), outcome.Stats.IncludedFiles))
		}
	}
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(req *createRequest, interval time.Duration, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	report := func(format string, args ...any) {
		if watchQuiet {
			return
		}
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	}

	if !watchQuiet {
		fmt.Printf("ecksnap watching %s (checking every %s)\n", req.RootName, interval)
	}

	// Write the initial snapshot so the artifact exists before the
	// first change.
	outcome, err := performCreate(ctx, req, log)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	recordRun(req, outcome, log)
	report("baseline %s (%d files, %s)", filepath.Base(outcome.Artifact),
		outcome.Stats.IncludedFiles, output.Bytes(int64(outcome.Bytes)))

	provider, err := pathlist.Select(req.Root, req.NoGit)
	if err != nil {
		return err
	}

	w := watcher.New(req.Root, provider, interval, buildOnChange(ctx, req, log, report), log)

	err = w.Run(ctx)
	if err == context.Canceled {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(req *createRequest, interval time.Duration, log zerolog.Logger) error {
	// Ensure config directory exists.
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// Check for existing daemon.
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	// Write PID file.
	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	// Open log file for output.
	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	writeLog(logFile, "ecksnap daemon started (PID %d, root %s, interval %s)", pid, req.Root, interval)

	report := func(format string, args ...any) {
		writeLog(logFile, format, args...)
	}

	outcome, err := performCreate(ctx, req, log)
	if err != nil {
		writeLog(logFile, "initial snapshot failed: %v", err)
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	recordRun(req, outcome, log)
	report("baseline %s (%d files)", outcome.Artifact, outcome.Stats.IncludedFiles)

	provider, err := pathlist.Select(req.Root, req.NoGit)
	if err != nil {
		return err
	}

	w := watcher.New(req.Root, provider, interval, buildOnChange(ctx, req, log, report), log)

	err = w.Run(ctx)
	if err == context.Canceled {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f *os.File, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}
