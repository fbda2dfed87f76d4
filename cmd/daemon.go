package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/currency"
	"github.com/theirongolddev/abroad/internal/daemon"
	"github.com/theirongolddev/abroad/internal/logging"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRunFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonMinChange    float64
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background exchange-rate daemon with HTTP/SSE endpoints",
	Long: "Poll the rates provider on an interval, cache every table and serve\n" +
		"/healthz, /v1/status, /v1/rates, /v1/convert, /v1/events and /v1/stream.",
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default daemon.addr)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default currency.refresh_minutes)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonRunFile, "run-file", filepath.Join(config.CacheDir(), "abroadd.json"), "Run file recording the daemon pid and address")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.CacheDir(), "abroadd.log"), "Log file for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	daemonCmd.PersistentFlags().Float64Var(&flagDaemonMinChange, "min-change", 0, "Ignore rate moves smaller than this many percent")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// runState is what a running daemon records in its run file.
type runState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	RatesURL  string    `json:"rates_url"`
}

// runFile is the path of a daemon run file.
type runFile string

func (f runFile) write(st runState) error {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0o750); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(string(f), append(data, '\n'), 0o600)
}

func (f runFile) read() (runState, error) {
	var st runState
	data, err := os.ReadFile(string(f))
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("reading %s: %w", f, err)
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("reading %s: invalid pid %d", f, st.PID)
	}
	return st, nil
}

func (f runFile) remove() { _ = os.Remove(string(f)) }

// live returns the recorded state when its process is still running. A
// stale file is removed.
func (f runFile) live() (runState, bool, error) {
	st, err := f.read()
	if errors.Is(err, os.ErrNotExist) {
		return st, false, nil
	}
	if err != nil {
		return st, false, err
	}
	if !processAlive(st.PID) {
		f.remove()
		return st, false, nil
	}
	return st, true, nil
}

func (f runFile) ensureFree() error {
	st, alive, err := f.live()
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("daemon already running (pid %d, http://%s)", st.PID, st.Addr)
	}
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if err := runFile(flagDaemonRunFile).ensureFree(); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagDaemonDetach {
		return startDaemonDetached(cfg)
	}
	return runDaemonForeground(cfg)
}

// daemonAddr resolves the listen address from the flag or the config.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

// childArgs re-runs the current invocation in the foreground.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}

func startDaemonDetached(cfg config.Config) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Print(cli.RenderKV([][2]string{
		{"Started daemon", fmt.Sprintf("pid %d", child.Process.Pid)},
		{"API", "http://" + daemonAddr(cfg) + "/v1/status"},
		{"Run file", flagDaemonRunFile},
		{"Log", flagDaemonLogFile},
	}))
	return nil
}

func runDaemonForeground(cfg config.Config) error {
	log, err := logging.New(cfg.Logging, logLevel())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	addr := daemonAddr(cfg)
	interval := flagDaemonInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Currency.RefreshMinutes) * time.Minute
	}

	rf := runFile(flagDaemonRunFile)
	if err := rf.write(runState{PID: os.Getpid(), Addr: addr, StartedAt: time.Now(), RatesURL: cfg.Currency.RatesURL}); err != nil {
		return err
	}
	defer rf.remove()

	var seed currency.Rates
	if cached, err := st.LoadRates(); err == nil {
		seed = cached.PerUSD
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Warn("loading cached rates", zap.Error(err))
	}

	svc := daemon.New(daemon.Config{
		Base:         "USD",
		Interval:     interval,
		Addr:         addr,
		EventsBuffer: flagDaemonEventsBuffer,
		MinChangePct: flagDaemonMinChange,
		Fetcher:      rates.NewClient(cfg.Currency.RatesURL),
		Store:        st,
		Logger:       log,
		Seed:         seed,
	})

	fmt.Printf("  abroad daemon listening on http://%s\n", addr)
	fmt.Printf("  Polling %s every %s\n", cfg.Currency.RatesURL, interval)
	fmt.Printf("  Stop with: abroad daemon stop --run-file %s\n", flagDaemonRunFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	rs, alive, err := runFile(flagDaemonRunFile).live()
	if err != nil {
		return err
	}
	if !alive {
		fmt.Println("  Daemon: not running")
		return nil
	}

	pairs := [][2]string{
		{"Daemon PID", fmt.Sprintf("%d", rs.PID)},
		{"Address", "http://" + rs.Addr},
		{"Up since", rs.StartedAt.Local().Format(time.RFC3339)},
	}
	st, err := fetchDaemonStatus(rs.Addr)
	if err != nil {
		pairs = append(pairs, [2]string{"API status", err.Error()})
		fmt.Print(cli.RenderKV(pairs))
		return nil
	}

	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = cli.FormatAge(st.LastPollAt, time.Now())
	}
	pairs = append(pairs,
		[2]string{"Last poll", lastPoll},
		[2]string{"Polls", fmt.Sprintf("%d (every %s)", st.PollCount, time.Duration(st.PollIntervalSec)*time.Second)},
		[2]string{"Source", st.Source},
		[2]string{"Currencies", fmt.Sprintf("%d per %s", st.Currencies, st.Base)},
		[2]string{"Events", fmt.Sprintf("%d buffered, %d subscribers", st.EventCount, st.SubscriberCount)},
	)
	if st.LastError != "" {
		pairs = append(pairs, [2]string{"Last error", st.LastError})
	}
	fmt.Print(cli.RenderKV(pairs))
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	rf := runFile(flagDaemonRunFile)
	rs, alive, err := rf.live()
	if err != nil {
		return err
	}
	if !alive {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(rs.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-tick.C:
			if !processAlive(rs.PID) {
				rf.remove()
				fmt.Printf("  Stopped daemon (pid %d)\n", rs.PID)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", rs.PID)
		}
	}
}
