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
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/finplan/internal/cache"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/daemon"
	"github.com/theirongolddev/finplan/internal/logging"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonRateLimit    int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the calculators over HTTP with an SSE event stream",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "finplan.pid")
	defaultLog := filepath.Join(config.DataDir(), "finplan-daemon.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonRateLimit, "rate-limit", -1, "Requests per client per window; 0 disables (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

// startDaemonDetached re-executes the current command line as a child with
// output sent to the log file.
func startDaemonDetached() error {
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.ensureFree(); err != nil {
		return err
	}

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

	child := exec.Command(exe, append(filterDetachArg(os.Args[1:]), "--child")...) //nolint:gosec // args come from current process invocation
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Started", Value: fmt.Sprintf("pid %d", child.Process.Pid)},
		{Label: "PID file", Value: pf.path()},
		{Label: "API", Value: "http://" + daemonAddr() + "/v1/status"},
		{Label: "Log", Value: flagDaemonLogFile},
	}))
	return nil
}

// daemonDeps picks the result cache and history store. Redis is used when
// configured and reachable; otherwise results are cached in memory. The
// returned cleanup closes whatever was opened.
func daemonDeps(ctx context.Context) (daemon.Deps, func()) {
	deps := daemon.Deps{
		Logger: logging.NewJSON(os.Stderr, logLevel()),
	}
	var closers []func()

	if addr := config.GetRedisAddr(cfg); addr != "" {
		rc := cache.NewRedis(addr)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			deps.Logger.Warn("redis unreachable, caching in memory", "addr", addr, "err", err)
			_ = rc.Close()
		} else {
			deps.Cache, deps.CacheBackend = rc, "redis"
			closers = append(closers, func() { _ = rc.Close() })
		}
	}

	if !flagNoHistory {
		s, err := openStore()
		if err != nil {
			deps.Logger.Warn("history disabled", "err", err)
		} else {
			deps.History = s
			closers = append(closers, func() { _ = s.Close() })
		}
	}

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}

func runDaemonForeground() error {
	addr := daemonAddr()
	st := daemonRuntimeState{PID: os.Getpid(), Addr: addr, StartedAt: time.Now()}
	if !flagNoHistory {
		st.DBPath = dbPath()
	}
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.claim(st); err != nil {
		return err
	}
	defer pf.release()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, cleanup := daemonDeps(ctx)
	defer cleanup()

	dcfg := daemon.Config{
		Addr:          addr,
		EventsBuffer:  cfg.Daemon.EventsBuffer,
		RateLimit:     cfg.Daemon.RateLimit,
		RateWindow:    time.Duration(cfg.Daemon.RateWindowSec) * time.Second,
		CacheTTL:      cfg.CacheTTL(),
		SolverOptions: cfg.SolverOptions(),
	}
	if flagDaemonEventsBuffer > 0 {
		dcfg.EventsBuffer = flagDaemonEventsBuffer
	}
	if flagDaemonRateLimit >= 0 {
		dcfg.RateLimit = flagDaemonRateLimit
	}

	deps.Logger.Info("daemon starting", "addr", addr, "pid", st.PID, "cache", deps.CacheBackend, "history", deps.History != nil)
	fmt.Printf("  finplan daemon listening on http://%s\n", addr)
	fmt.Printf("  Stop with: finplan daemon stop --pid-file %s\n", pf.path())

	if err := daemon.New(dcfg, deps).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// fetchStatus asks a running daemon for its /v1/status document.
func fetchStatus(addr string) (daemon.Status, error) {
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

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	proc, running, err := pidFile(flagDaemonPIDFile).live()
	if err != nil {
		return err
	}
	if !running {
		fmt.Println("  Daemon: not running")
		return nil
	}

	addr := proc.Addr
	if addr == "" {
		addr = daemonAddr()
	}

	st, err := fetchStatus(addr)
	if err != nil {
		fmt.Print(cli.RenderKV([]cli.KV{
			{Label: "Daemon PID", Value: strconv.Itoa(proc.PID)},
			{Label: "Address", Value: "http://" + addr},
			{Label: "API status", Value: err.Error()},
		}))
		return nil
	}
	if flagJSON {
		return printJSON(st)
	}

	lastCalc := "none yet"
	if !st.LastCalcAt.IsZero() {
		lastCalc = st.LastCalcAt.Local().Format(time.RFC3339)
	}
	rate := "off"
	if st.RateLimit > 0 {
		rate = fmt.Sprintf("%d per %ds", st.RateLimit, st.RateWindowSec)
	}

	fmt.Println(cli.RenderTitle("finplan daemon"))
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "PID", Value: strconv.Itoa(proc.PID)},
		{Label: "Address", Value: "http://" + addr},
		{Label: "Up since", Value: st.StartedAt.Local().Format(time.RFC3339)},
		{Label: "Last calculation", Value: lastCalc},
		{Label: "Cache", Value: st.CacheBackend},
		{Label: "History", Value: strconv.FormatBool(st.HistoryEnabled)},
		{Label: "Rate limit", Value: rate},
		{Label: "Subscribers", Value: strconv.Itoa(st.SubscriberCount)},
	}))

	kinds := make([]string, 0, len(st.ByKind))
	for k := range st.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	rows := make([][]string, 0, len(kinds)+2)
	for _, k := range kinds {
		rows = append(rows, []string{k, strconv.FormatInt(st.ByKind[model.CalculationKind(k)], 10)})
	}
	rows = append(rows, cli.SeparatorRow,
		[]string{"total", strconv.FormatInt(st.Totals.Requests, 10)},
		[]string{"cache hits", strconv.FormatInt(st.Totals.CacheHits, 10)},
		[]string{"errors", strconv.FormatInt(st.Totals.Errors, 10)})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Title: "Requests", Headers: []string{"Kind", "Count"}, Rows: rows}))
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	st, running, err := pf.live()
	if err != nil {
		return err
	}
	if !running {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}
	if !waitExit(st.PID, 8*time.Second) {
		return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
	}
	pf.release()
	fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
	return nil
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
