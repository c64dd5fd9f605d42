// resusage records which external resources each test touched.
//
// Usage:
//
//	go test -json ./... | resusage
//	resusage run -- go test -json ./...
//	resusage show resource_usage_map.json
//	resusage keywords
//
// Tests report usage through the helpers in pkg/keywords. At the end of the
// run the per-test inventory is written to resource_usage_map.json and a
// summary is rendered.
//
// Output modes (auto-detected):
//
//	terminal  styled Unicode output (default when TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON for automation
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/dkoosis/resusage/internal/config"
	"github.com/dkoosis/resusage/internal/detect"
	"github.com/dkoosis/resusage/internal/logging"
	"github.com/dkoosis/resusage/internal/version"
	"github.com/dkoosis/resusage/pkg/listener"
	"github.com/dkoosis/resusage/pkg/live"
	"github.com/dkoosis/resusage/pkg/mapper"
	"github.com/dkoosis/resusage/pkg/render"
	"github.com/dkoosis/resusage/pkg/tracker"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "run":
			return runCommand(args[1:], stdin, stdout, stderr)
		case "show":
			return runShow(args[1:], stdin, stdout, stderr)
		case "keywords":
			return runKeywords(args[1:], stdout, stderr)
		case "version":
			fmt.Fprintln(stdout, version.String())
			return 0
		}
	}
	return runListen(args, stdin, stdout, stderr)
}

// cliFlags binds the flags shared by every subcommand.
type cliFlags struct {
	config.CliFlags
	live bool
}

func newFlagSet(name string, f *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.ConfigPath, "config", "", "Config file (default .resusage.yaml)")
	fs.StringVar(&f.Output, "output", config.DefaultOutput, "Usage map file written at shutdown")
	fs.StringVar(&f.Format, "format", config.DefaultFormat, "Output format: auto, terminal, llm, json")
	fs.StringVar(&f.Theme, "theme", config.DefaultTheme, "Theme: default, orca, mono")
	fs.BoolVar(&f.QualifyNames, "qualify", false, "Key tests as <package>.<Test>")
	fs.BoolVar(&f.Passthrough, "passthrough", false, "Copy the raw event stream to stdout")
	fs.BoolVar(&f.Strict, "strict", false, "Exit 1 when the usage map cannot be written")
	fs.StringVar(&f.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	return fs
}

// resolve applies flag/env/file precedence and installs the logger.
func resolve(fs *flag.FlagSet, f *cliFlags, stderr io.Writer) (*config.ResolvedConfig, *slog.Logger, bool) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "output":
			f.OutputSet = true
		case "format":
			f.FormatSet = true
		case "theme":
			f.ThemeSet = true
		case "qualify":
			f.QualifyNameSet = true
		case "passthrough":
			f.PassthroughSet = true
		case "strict":
			f.StrictSet = true
		case "log-level":
			f.LogLevelSet = true
		}
	})
	cfg, err := config.ResolveConfig(f.CliFlags)
	if err != nil {
		fmt.Fprintf(stderr, "resusage: %v\n", err)
		return nil, nil, false
	}
	log := logging.Init(stderr, cfg.Level())
	log.Debug("config resolved", "file", cfg.ConfigFile, "sources", cfg.Sources)
	return cfg, log, true
}

// runListen consumes go test -json from stdin.
func runListen(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet("resusage", &f, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "resusage: unexpected argument %q\n", fs.Arg(0))
		return 2
	}
	cfg, log, ok := resolve(fs, &f, stderr)
	if !ok {
		return 2
	}

	// Peek stdin to detect format without consuming
	br := bufio.NewReaderSize(stdin, 8*1024)
	peeked, _ := br.Peek(4096)
	if len(peeked) == 0 {
		fmt.Fprintf(stderr, "resusage: no input on stdin\n")
		return 2
	}
	switch detect.Sniff(peeked) {
	case detect.UsageMap:
		return showReader(br, cfg, stdout, stderr)
	case detect.Unknown:
		fmt.Fprintf(stderr, "resusage: unrecognized input (expected go test -json or a usage map)\n")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// Close the underlying reader on cancel to unblock the scanner goroutine.
	if c, ok := stdin.(io.Closer); ok {
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}

	var in io.Reader = br
	report := stdout
	if cfg.Passthrough {
		in = io.TeeReader(br, stdout)
		report = stderr
	}

	s, code := newSession(cfg, log, stderr)
	if code >= 0 {
		return code
	}
	if err := s.listen(ctx, in); err != nil {
		fmt.Fprintf(stderr, "resusage: reading events: %v\n", err)
		code = 2
	}
	if c := s.finish(report); code < 0 {
		code = c
	}
	return code
}

// runCommand spawns a test command and listens to its stdout.
func runCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet("resusage run", &f, stderr)
	fs.BoolVar(&f.live, "live", false, "Show live progress on a terminal")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(stderr, "resusage run: missing command (usage: resusage run [flags] -- go test -json ./...)\n")
		return 2
	}
	cfg, log, ok := resolve(fs, &f, stderr)
	if !ok {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stderr = stderr
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		fmt.Fprintf(stderr, "resusage run: %v\n", err)
		return 2
	}

	var view *live.View
	var opts []tracker.Option
	if f.live && isTTYWriter(stderr) {
		view = live.Start(ctx, stderr, strings.Join(argv, " "))
		opts = append(opts, tracker.WithObserver(view.Observer()))
	}
	s, code := newSession(cfg, log, stderr, opts...)
	if code >= 0 {
		return code
	}

	if err := cmd.Start(); err != nil {
		if view != nil {
			_ = view.Stop()
		}
		fmt.Fprintf(stderr, "resusage run: starting %s: %v\n", argv[0], err)
		return 2
	}

	var in io.Reader = pipe
	if cfg.Passthrough {
		in = io.TeeReader(pipe, stdout)
	}
	if err := s.listen(ctx, in); err != nil {
		log.Warn("event stream ended early", "err", err)
	}
	// Drain so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, pipe)
	waitErr := cmd.Wait()

	if view != nil {
		if err := view.Stop(); err != nil {
			log.Warn("live view", "err", err)
		}
	}

	report := stdout
	if cfg.Passthrough {
		report = stderr
	}
	persistCode := s.finish(report)

	childCode, err := childExitCode(waitErr)
	if err != nil {
		fmt.Fprintf(stderr, "resusage run: %v\n", err)
		return 2
	}
	if childCode == 0 {
		return persistCode
	}
	return childCode
}

// childExitCode converts the result of cmd.Wait into an exit status. A child
// killed by a signal reports 128+signal, as a shell would.
func childExitCode(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return 0, waitErr
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return code, nil
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return 1, nil
}

// runShow renders a saved usage map from a file or stdin.
func runShow(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet("resusage show", &f, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, _, ok := resolve(fs, &f, stderr)
	if !ok {
		return 2
	}
	if fs.NArg() > 0 {
		file, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "resusage show: %v\n", err)
			return 2
		}
		defer file.Close()
		return showReader(file, cfg, stdout, stderr)
	}

	br := bufio.NewReader(stdin)
	peeked, _ := br.Peek(4096)
	if len(peeked) == 0 {
		fmt.Fprintf(stderr, "resusage show: no input on stdin\n")
		return 2
	}
	if got := detect.Sniff(peeked); got != detect.UsageMap {
		fmt.Fprintf(stderr, "resusage show: expected a usage map, got %s\n", got)
		return 2
	}
	return showReader(br, cfg, stdout, stderr)
}

func showReader(r io.Reader, cfg *config.ResolvedConfig, stdout, stderr io.Writer) int {
	data, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(stderr, "resusage: reading usage map: %v\n", err)
		return 2
	}
	u, err := tracker.Decode(data)
	if err != nil {
		fmt.Fprintf(stderr, "resusage: parsing usage map: %v\n", err)
		return 2
	}
	return renderUsage(u, cfg, stdout, stderr)
}

// runKeywords lists the keyword registry.
func runKeywords(args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet("resusage keywords", &f, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, _, ok := resolve(fs, &f, stderr)
	if !ok {
		return 2
	}
	m, err := cfg.Mapper()
	if err != nil {
		fmt.Fprintf(stderr, "resusage: %v\n", err)
		return 2
	}

	names := m.Keywords()
	width := 0
	for _, kw := range names {
		width = max(width, runewidth.StringWidth(kw))
	}
	for _, kw := range names {
		kind, _ := m.KindOf(kw)
		if kind == "" {
			kind = "?"
		}
		fmt.Fprintf(stdout, "%s  %s\n", runewidth.FillRight(kw, width), kind)
	}
	return 0
}

// session ties a tracker to a listener for one run.
type session struct {
	cfg      *config.ResolvedConfig
	log      *slog.Logger
	tracker  *tracker.Tracker
	listener *listener.Listener
	stderr   io.Writer
}

// newSession returns (session, -1) on success; (nil, exitCode) on error.
func newSession(cfg *config.ResolvedConfig, log *slog.Logger, stderr io.Writer, opts ...tracker.Option) (*session, int) {
	m, err := cfg.Mapper()
	if err != nil {
		fmt.Fprintf(stderr, "resusage: %v\n", err)
		return nil, 2
	}
	opts = append([]tracker.Option{
		tracker.WithOutputPath(cfg.Output),
		tracker.WithLogger(log),
	}, opts...)
	t := tracker.New(m, opts...)
	l := listener.New(t, listener.Options{QualifyNames: cfg.QualifyNames, Logger: log})
	return &session{cfg: cfg, log: log, tracker: t, listener: l, stderr: stderr}, -1
}

func (s *session) listen(ctx context.Context, r io.Reader) error {
	err := s.listener.Listen(ctx, r)
	if errors.Is(err, context.Canceled) {
		s.log.Info("interrupted, writing partial usage map")
		return nil
	}
	return err
}

// finish shuts the run down: persists the map and renders the summary.
func (s *session) finish(report io.Writer) int {
	st := s.listener.Stats()
	s.log.Debug("run finished", "events", st.Events, "tests", st.Tests, "invocations", st.Invocations, "unattributed", st.Unattributed)
	if st.Unattributed > 0 {
		s.log.Warn("resource markers outside any test were ignored", "count", st.Unattributed)
	}

	code := 0
	if err := s.tracker.Close(); err != nil {
		fmt.Fprintf(s.stderr, "resusage: %v\n", err)
		if s.cfg.Strict {
			code = 1
		}
	}
	if c := renderUsage(s.tracker.Usage(), s.cfg, report, s.stderr); c != 0 {
		return c
	}
	return code
}

func renderUsage(u *tracker.UsageMap, cfg *config.ResolvedConfig, w, stderr io.Writer) int {
	mode := resolveFormat(cfg.Format, w)
	width, _ := termSize(w)
	patterns := mapper.FromUsage(u, mapper.DefaultTop)
	if _, err := fmt.Fprint(w, render.ForMode(mode, cfg.Theme, width).Render(patterns)); err != nil {
		fmt.Fprintf(stderr, "resusage: writing report: %v\n", err)
		return 2
	}
	return 0
}

// resolveFormat turns "auto" into terminal or llm depending on w.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
