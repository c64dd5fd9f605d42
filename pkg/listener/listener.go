// Package listener drives a tracker from a go test -json event stream.
//
// Event mapping:
//
//	run              StartTest
//	pass/fail/skip   EndTest
//	pause            Suspend, when the paused test is current
//	cont             Resume
//	output           decoded marker lines become Keyword calls
//
// test2json tags every output line with its test, so output from parallel
// tests is attributed by resuming the owning test first. Package-level output
// is delivered with no current test and is therefore ignored by the tracker.
package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/dkoosis/resusage/pkg/keywords"
	"github.com/dkoosis/resusage/pkg/testjson"
)

// Target receives lifecycle calls. *tracker.Tracker implements it.
type Target interface {
	StartTest(name string)
	Keyword(keyword string, args ...string)
	EndTest(name string)
	Suspend()
	Resume(name string) bool
	Current() string
}

// Options configures a Listener.
type Options struct {
	// QualifyNames keys tests as "<package>.<Test>" instead of "<Test>".
	QualifyNames bool
	Logger       *slog.Logger
}

// Stats summarizes a listened run.
type Stats struct {
	Events       int
	Malformed    int
	Packages     int
	Tests        int
	Passed       int
	Failed       int
	Skipped      int
	Invocations  int // marker lines decoded
	Unattributed int // marker lines seen outside any started test
	BuildFailed  int // packages that failed to build
}

// Listener adapts test2json events to a Target.
type Listener struct {
	target   Target
	opts     Options
	log      *slog.Logger
	stats    Stats
	packages map[string]bool
}

// New returns a Listener feeding target.
func New(target Target, opts Options) *Listener {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Listener{
		target:   target,
		opts:     opts,
		log:      log,
		packages: make(map[string]bool),
	}
}

// Listen reads events from r until EOF or cancellation. The target is not
// closed; the caller decides when the run has shut down.
func (l *Listener) Listen(ctx context.Context, r io.Reader) error {
	malformed, err := testjson.Stream(ctx, r, l.Handle)
	l.stats.Malformed += malformed
	if malformed > 0 {
		l.log.Warn("skipped malformed go test -json lines", "count", malformed)
	}
	return err
}

// Handle applies one event.
func (l *Listener) Handle(e testjson.TestEvent) {
	l.stats.Events++
	if e.Package != "" && !l.packages[e.Package] {
		l.packages[e.Package] = true
		l.stats.Packages++
	}

	name := l.testName(e)
	switch e.Action {
	case testjson.ActionRun:
		if name == "" {
			return
		}
		l.stats.Tests++
		l.target.StartTest(name)

	case testjson.ActionPause:
		if name != "" && l.target.Current() == name {
			l.target.Suspend()
		}

	case testjson.ActionCont:
		if name != "" {
			l.target.Resume(name)
		}

	case testjson.ActionPass, testjson.ActionFail, testjson.ActionSkip:
		if !e.IsTestEnd() {
			return
		}
		switch e.Action {
		case testjson.ActionPass:
			l.stats.Passed++
		case testjson.ActionFail:
			l.stats.Failed++
		default:
			l.stats.Skipped++
		}
		l.target.EndTest(name)

	case testjson.ActionOutput:
		l.handleOutput(name, e)

	case testjson.ActionBuildFail:
		// Build output never carries markers; a failed package simply has no tests.
		l.stats.BuildFailed++
		l.log.Warn("package failed to build", "package", e.ImportPath)
	}
}

func (l *Listener) handleOutput(name string, e testjson.TestEvent) {
	inv, ok := keywords.Decode(e.Output)
	if !ok {
		return
	}
	l.stats.Invocations++

	attributed := name != ""
	if !attributed {
		l.target.Suspend()
	} else if l.target.Current() != name && !l.target.Resume(name) {
		l.target.Suspend()
		attributed = false
	}
	if !attributed {
		l.stats.Unattributed++
		l.log.Debug("keyword outside a test", "package", e.Package, "test", e.Test, "keyword", inv.Keyword)
	}
	l.target.Keyword(inv.Keyword, inv.Args...)
}

func (l *Listener) testName(e testjson.TestEvent) string {
	if e.Test == "" {
		return ""
	}
	if l.opts.QualifyNames && e.Package != "" {
		return e.Package + "." + e.Test
	}
	return e.Test
}

// Stats returns counters collected so far.
func (l *Listener) Stats() Stats { return l.stats }
