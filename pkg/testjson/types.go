// Package testjson reads go test -json NDJSON streams.
package testjson

import "time"

// Actions emitted by test2json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
	ActionBench  = "bench"

	// Since Go 1.24 build output is part of the stream, keyed by ImportPath.
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
	// Since Go 1.25, for t.Attr.
	ActionAttr = "attr"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`

	// ImportPath is set on build-output and build-fail events.
	ImportPath string `json:"ImportPath,omitempty"`
}

// IsTestEnd reports whether e finishes a test (not a package).
func (e TestEvent) IsTestEnd() bool {
	if e.Test == "" {
		return false
	}
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	}
	return false
}

// ProcessFunc is called once per decoded event.
type ProcessFunc func(TestEvent)

// IsAction reports whether s is an action test2json emits.
func IsAction(s string) bool {
	switch s {
	case ActionStart, ActionRun, ActionPause, ActionCont, ActionPass,
		ActionFail, ActionSkip, ActionOutput, ActionBench,
		ActionBuildOutput, ActionBuildFail, ActionAttr:
		return true
	}
	return false
}
