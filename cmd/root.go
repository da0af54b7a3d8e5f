// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/api"
	"github.com/nibzard/todolist-go/internal/app"
	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/fakeapi"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/ui"
	"github.com/nibzard/todolist-go/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// doctorTimeout bounds the reachability probe when no request timeout is set.
const doctorTimeout = 10 * time.Second

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls":
		return lsCommand(ctx, cfg, remainingArgs)
	case "users":
		return usersCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "done":
		return bulkCommand(ctx, cfg, app.BulkDone, remainingArgs)
	case "undo":
		return bulkCommand(ctx, cfg, app.BulkUndo, remainingArgs)
	case "rm":
		return bulkCommand(ctx, cfg, app.BulkDelete, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "tail":
		return tailCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "config":
		return configCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session bundles what the API commands share: a configured client, the
// console logger and the request journal of this invocation.
type session struct {
	client  *api.Client
	logger  *log.Logger
	journal *logging.SessionLog
}

// openSession builds the API client from cfg. Console logs go to console.
func openSession(cfg *config.Config, console io.Writer, command string) (*session, error) {
	logger := logging.NewConsoleLoggerFromConfig(console, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	s := &session{logger: logger}

	var journals []logging.Journal
	if cfg.Journal {
		sl, err := logging.NewSessionLog(cfg.LogDir, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening request journal: %w", err)
		}
		s.journal = sl
		journals = append(journals, sl)
		logger.Debug("journal", "path", sl.LogPath)
	}
	if cfg.Trace {
		journals = append(journals, logging.NewStreamJournal(console))
	}

	var journal logging.Journal = logging.Discard
	if len(journals) > 0 {
		journal = logging.NewMultiJournal(journals...)
		if err := journal.Record(logging.Event{Type: logging.EventSession, Message: "start " + command}); err != nil {
			logger.Warn("journal write failed", "error", err)
		}
	}

	s.client = api.New(cfg.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		api.WithJournal(journal),
		api.WithSchemaCheck(cfg.SchemaCheck),
		api.WithUserAgent(cfg.UserAgent),
		api.WithLogger(logger),
	)
	return s, nil
}

func (s *session) Close() error {
	return s.journal.Close()
}

// stderrNotifier reports controller messages on stderr for non-interactive
// commands.
func stderrNotifier() app.Notifier {
	return app.NotifierFunc(func(msg string) {
		fmt.Fprintf(stderr, "❌ %s\n", msg)
	})
}

// tuiCommand launches the interactive client.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// console output would tear the alternate screen; the journal keeps the record
	s, err := openSession(cfg, io.Discard, "tui")
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunTUI(ctx, s.client, s.logger)
}

// lsCommand loads every task and prints the ones matching the filters.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	userID := fs.Int("user", 0, "Only tasks owned by this user id")
	status := fs.String("status", "", "Filter by status (done|pending)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	switch *status {
	case "", "done", "pending":
	default:
		return fmt.Errorf("invalid status %q (want done or pending)", *status)
	}

	s, err := openSession(cfg, stderr, "ls")
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := app.New(s.client, app.NewTargets(), stderrNotifier(), s.logger)
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	nodes := ctrl.Targets().Tasks.Nodes()
	tasks := make([]todo.Task, 0, len(nodes))
	for _, n := range nodes {
		tasks = append(tasks, n.Task)
	}
	if *userID != 0 {
		tasks = todo.FilterByUser(tasks, *userID)
	}
	if *status != "" {
		tasks = todo.FilterByCompleted(tasks, *status == "done")
	}

	users := ctrl.Users()
	for _, t := range tasks {
		n := &view.Node{Task: t, Owner: todo.OwnerName(users, t.UserID), Checked: t.Completed}
		fmt.Fprintf(stdout, "%4d %s\n", t.ID, view.FormatNode(n, false))
	}
	fmt.Fprintf(stdout, "\n%d tasks\n", len(tasks))
	return nil
}

// usersCommand prints the user list.
func usersCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	s, err := openSession(cfg, stderr, "users")
	if err != nil {
		return err
	}
	defer s.Close()

	res := s.client.ListUsers(ctx)
	if !res.OK() {
		return fmt.Errorf("listing users: %w", res.Err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, u := range res.Value {
		fmt.Fprintf(tw, "%d\t%s\n", u.ID, u.Name)
	}
	return tw.Flush()
}

// addCommand creates a task through the same form flow the TUI uses.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	userID := fs.Int("user", 0, "Owner user id")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")

	s, err := openSession(cfg, stderr, "add")
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := app.New(s.client, app.NewTargets(), stderrNotifier(), s.logger)
	if err := ctrl.LoadUsers(ctx); err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	targets := ctrl.Targets()
	targets.Form.SetInput(title)
	if *userID != 0 && !targets.Users.SelectValue(*userID) {
		return fmt.Errorf("unknown user id %d", *userID)
	}

	key, ok := ctrl.Submit(ctx)
	if !ok {
		return errors.New("task not created")
	}
	node := targets.Tasks.Node(key)
	fmt.Fprintf(stdout, "%4d %s\n", node.Task.ID, view.FormatNode(node, false))
	return nil
}

// bulkCommand applies a done, undo or rm request to every id argument.
func bulkCommand(ctx context.Context, cfg *config.Config, action app.BulkAction, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("usage: todolist %s <id...>", action)
	}

	s, err := openSession(cfg, stderr, string(action))
	if err != nil {
		return err
	}
	defer s.Close()

	results := app.RunBulk(ctx, s.client, stderrNotifier(), action, ids, cfg.Workers)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		fmt.Fprintf(stdout, "✅ %s %d\n", action, r.TaskID)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s interrupted, %d of %d requests failed or were skipped: %w", action, failed, len(ids), err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(ids))
	}
	return nil
}

// parseIDs converts positional arguments to task ids.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid task id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// serveCommand runs the bundled JSONPlaceholder-compatible API.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", cfg.Serve.Addr, "Listen address")
	db := fs.String("db", cfg.Serve.DB, "SQLite database path (:memory: for a throwaway store)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := logging.NewConsoleLoggerFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	store, err := fakeapi.Open(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("serving", "addr", *addr, "db", *db)
	return fakeapi.NewServer(store, logger).ListenAndServe(ctx, *addr)
}

// tailCommand tails the latest request journal of the configured endpoint.
func tailCommand(cfg *config.Config, args []string) error {
	// Parse tail-specific flags
	fs := flag.NewFlagSet("todolist tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(stdout, logPath, *n, *follow)
}

// doctorCommand checks config, schemas, the journal directory and the API.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("todolist doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config
	allOK := true

	fmt.Fprintln(stdout, "todolist doctor")
	fmt.Fprintln(stdout)

	// Config
	fmt.Fprintln(stdout, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  ✅ No config file, using defaults")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(stdout, "  ✅ Loaded %s\n", f)
	}
	if *verbose {
		keys := make([]string, 0, len(cws.Sources))
		for k := range cws.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(stdout, "     %-24s %s\n", k, cws.Sources[k])
		}
	}
	fmt.Fprintln(stdout)

	// Schemas
	fmt.Fprintln(stdout, "Schemas:")
	if err := todo.ValidatePayload(todo.PayloadUsers, []byte("[]")); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else if !cfg.SchemaCheck {
		fmt.Fprintln(stdout, "  ⚠️  Compiled, but schema_check is disabled")
	} else {
		fmt.Fprintln(stdout, "  ✅ Response schemas compiled")
	}
	fmt.Fprintln(stdout)

	// Journal
	fmt.Fprintln(stdout, "Journal:")
	switch logDir, err := logging.FindLogDir(cfg.LogDir, cfg.BaseURL); {
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	case !cfg.Journal:
		fmt.Fprintf(stdout, "  ⚠️  Disabled (would write to %s)\n", logDir)
	default:
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(stdout, "  ❌ Cannot create %s: %v\n", logDir, err)
			allOK = false
		} else {
			fmt.Fprintf(stdout, "  ✅ %s\n", logDir)
		}
	}
	fmt.Fprintln(stdout)

	// API
	fmt.Fprintln(stdout, "API:")
	timeout := cfg.RequestTimeout()
	if timeout == 0 {
		timeout = doctorTimeout
	}
	client := api.New(cfg.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithSchemaCheck(cfg.SchemaCheck),
		api.WithUserAgent(cfg.UserAgent),
	)
	if res := client.ListUsers(ctx); res.OK() {
		fmt.Fprintf(stdout, "  ✅ %s reachable (%d users)\n", client.BaseURL(), len(res.Value))
	} else {
		fmt.Fprintf(stdout, "  ❌ %s: %v\n", client.BaseURL(), res.Err)
		allOK = false
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed.")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. todolist may not work correctly.")
	return fmt.Errorf("doctor checks failed")
}

// configCommand prints the effective configuration as TOML.
func configCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print a commented example config instead")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	return toml.NewEncoder(stdout).Encode(cfg)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "todolist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todolist - A terminal client for a JSONPlaceholder-style to-do API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch the interactive client (default command)")
	fmt.Fprintln(w, "  ls                  List tasks")
	fmt.Fprintln(w, "  users               List users")
	fmt.Fprintln(w, "  add <title...>      Create a task")
	fmt.Fprintln(w, "  done <id...>        Mark tasks completed")
	fmt.Fprintln(w, "  undo <id...>        Mark tasks not completed")
	fmt.Fprintln(w, "  rm <id...>          Delete tasks")
	fmt.Fprintln(w, "  serve               Run a local JSONPlaceholder-compatible API")
	fmt.Fprintln(w, "  tail                Tail the latest request journal")
	fmt.Fprintln(w, "  doctor              Check config, schemas, journal and API reachability")
	fmt.Fprintln(w, "  config              Print the effective configuration")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -user int")
	fmt.Fprintln(w, "        Only tasks owned by this user id")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (done|pending)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -user int")
	fmt.Fprintln(w, "        Owner user id (required)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve Options:")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address")
	fmt.Fprintln(w, "  -db string")
	fmt.Fprintln(w, "        SQLite database path (:memory: for a throwaway store)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options:")
	fmt.Fprintln(w, "  -v    Show where each setting came from")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print a commented example config")
}
