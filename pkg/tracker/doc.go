// Package tracker attributes resource records to the test that produced them.
//
// A Tracker is driven by an external runner through explicit lifecycle calls:
//
//	StartTest(name)          current test becomes name, its entry is emptied
//	Keyword(kw, args...)     resolved through the Resolver, appended on a match
//	EndTest(name)            no current test; the entry is kept
//	Close()                  the whole map is written once through the Sink
//
// Keyword calls outside a test are ignored, so setup and teardown activity is
// never attributed to the wrong test. Resolution failures are logged and
// dropped: tracking never affects a test's outcome.
//
// A Tracker is not safe for concurrent use. Parallel runners need one Tracker
// per lane or must serialize calls.
package tracker
