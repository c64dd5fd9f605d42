package tracker

import (
	"fmt"
	"log/slog"

	"github.com/dkoosis/resusage/pkg/resource"
)

// Resolver interprets keyword calls. *resource.Mapper implements it.
type Resolver interface {
	Resolve(keyword string, args []string) (resource.Record, bool, error)
}

// EventType identifies a tracker notification.
type EventType string

const (
	EventTestStart EventType = "test-start"
	EventTestEnd   EventType = "test-end"
	EventRecord    EventType = "record"
	EventRejected  EventType = "rejected"
	EventClosed    EventType = "closed"
)

// Event is passed to an Observer after the tracker state has changed.
type Event struct {
	Type    EventType
	Test    string
	Keyword string
	Record  resource.Record // set for EventRecord
	Err     error           // set for EventRejected and a failed EventClosed
}

// Observer is notified of tracker activity. It runs on the caller's goroutine.
type Observer func(Event)

// Option configures a Tracker.
type Option func(*Tracker)

// WithOutputPath sets the file written by Close. Ignored when WithSink is used.
func WithOutputPath(path string) Option {
	return func(t *Tracker) { t.path = path }
}

// WithSink replaces the default FileSink.
func WithSink(s Sink) Option {
	return func(t *Tracker) { t.sink = s }
}

// WithLogger sets the logger used for warnings and the final write.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithObserver registers fn for tracker events.
func WithObserver(fn Observer) Option {
	return func(t *Tracker) { t.observers = append(t.observers, fn) }
}

// Tracker collects resource records per test.
type Tracker struct {
	resolver  Resolver
	usage     *UsageMap
	current   string
	ended     map[string]bool
	path      string
	sink      Sink
	log       *slog.Logger
	observers []Observer
	closed    bool
	closeErr  error
	rejected  int
}

// New returns a Tracker with no current test and an empty usage map.
func New(r Resolver, opts ...Option) *Tracker {
	t := &Tracker{
		resolver: r,
		usage:    NewUsageMap(),
		ended:    make(map[string]bool),
		path:     DefaultOutputPath,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.sink == nil {
		t.sink = FileSink{Path: t.path}
	}
	return t
}

// StartTest makes name the current test. A name seen earlier in the run has
// its records discarded.
func (t *Tracker) StartTest(name string) {
	if t.usage.Has(name) {
		t.log.Debug("test started again, discarding earlier records", "test", name)
	}
	t.current = name
	delete(t.ended, name)
	t.usage.Start(name)
	t.notify(Event{Type: EventTestStart, Test: name})
}

// Keyword records the resource touched by one keyword call, if any.
// It is a no-op outside a test.
func (t *Tracker) Keyword(keyword string, args ...string) {
	if t.current == "" {
		return
	}
	rec, ok, err := t.resolve(keyword, args)
	if err != nil {
		t.rejected++
		t.log.Warn("ignoring keyword", "test", t.current, "keyword", keyword, "args", args, "err", err)
		t.notify(Event{Type: EventRejected, Test: t.current, Keyword: keyword, Err: err})
		return
	}
	if !ok {
		return
	}
	t.usage.Append(t.current, rec)
	t.notify(Event{Type: EventRecord, Test: t.current, Keyword: keyword, Record: rec})
}

// resolve converts a handler panic into an error.
func (t *Tracker) resolve(keyword string, args []string) (rec resource.Record, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec, ok = resource.Record{}, false
			err = &resource.HandlerError{Keyword: keyword, Err: fmt.Errorf("handler panicked: %v", p)}
		}
	}()
	return t.resolver.Resolve(keyword, args)
}

// EndTest clears the current test. The test's records are kept.
func (t *Tracker) EndTest(name string) {
	if t.current != "" && name != "" && name != t.current {
		t.log.Debug("end of test that is not current", "test", name, "current", t.current)
	}
	t.current = ""
	if name != "" {
		t.ended[name] = true
	}
	t.notify(Event{Type: EventTestEnd, Test: name})
}

// Suspend clears the current test without ending it.
func (t *Tracker) Suspend() {
	t.current = ""
}

// Resume makes a started, not yet ended test current again, keeping its
// records. It reports false, and changes nothing, for any other name.
func (t *Tracker) Resume(name string) bool {
	if name == "" || !t.usage.Has(name) || t.ended[name] {
		return false
	}
	t.current = name
	return true
}

// Current returns the current test, or "" outside a test.
func (t *Tracker) Current() string { return t.current }

// Usage returns the collected usage map. Callers must not modify it while
// the tracker is in use.
func (t *Tracker) Usage() *UsageMap { return t.usage }

// Rejected returns how many keyword calls failed to resolve.
func (t *Tracker) Rejected() int { return t.rejected }

// OutputPath returns the file Close writes, or "" for a custom sink.
func (t *Tracker) OutputPath() string { return t.sinkPath() }

// Close writes the usage map through the sink. Only the first call writes;
// later calls return the first call's result.
func (t *Tracker) Close() error {
	if t.closed {
		t.log.Debug("tracker already closed")
		return t.closeErr
	}
	t.closed = true
	t.current = ""

	if err := t.sink.Write(t.usage); err != nil {
		t.closeErr = &PersistenceError{Path: t.sinkPath(), Err: err}
		t.log.Error("resource usage map not written", "err", t.closeErr)
		t.notify(Event{Type: EventClosed, Err: t.closeErr})
		return t.closeErr
	}

	t.log.Info("resource usage map written", "path", t.sinkPath(), "tests", t.usage.Len(), "records", t.usage.RecordCount())
	t.notify(Event{Type: EventClosed})
	return nil
}

func (t *Tracker) sinkPath() string {
	if fs, ok := t.sink.(FileSink); ok {
		return fs.Path
	}
	return ""
}

func (t *Tracker) notify(e Event) {
	for _, fn := range t.observers {
		fn(e)
	}
}
