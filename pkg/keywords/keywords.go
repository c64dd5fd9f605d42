// Package keywords provides the resource keywords tests call directly.
//
// Each helper writes one marker line to the test log:
//
//	[RESOURCE] DB_TABLE:orders
//	[KEYWORD] "Use S3 Bucket" "landing"
//
// The helpers do not touch any tracker. When the run is observed through
// go test -json, the listener decodes these lines back into keyword calls.
package keywords

import (
	"strconv"
	"strings"

	"github.com/dkoosis/resusage/pkg/resource"
)

// Marker prefixes written by the helpers.
const (
	ResourceMarker = "[RESOURCE]"
	KeywordMarker  = "[KEYWORD]"
)

// Logger is the subset of testing.TB the helpers need.
type Logger interface {
	Helper()
	Logf(format string, args ...any)
}

// helperKeywords maps the kind each helper reports to its public keyword name.
var helperKeywords = map[resource.Kind]string{
	resource.KindDBTable:       resource.KeywordUseDBTable,
	resource.KindADLSPath:      resource.KeywordUseADLSPath,
	resource.KindDatabricksJob: resource.KeywordRunDatabricksJob,
}

// UseDBTable reports that the test reads or writes the named table.
func UseDBTable(l Logger, table string) {
	l.Helper()
	report(l, resource.KindDBTable, table)
}

// UseADLSPath reports that the test touches the given ADLS path.
func UseADLSPath(l Logger, path string) {
	l.Helper()
	report(l, resource.KindADLSPath, path)
}

// RunDatabricksJob reports that the test triggers the named Databricks job.
func RunDatabricksJob(l Logger, job string) {
	l.Helper()
	report(l, resource.KindDatabricksJob, job)
}

func report(l Logger, kind resource.Kind, name string) {
	l.Helper()
	l.Logf("%s %s:%s", ResourceMarker, kind, name)
}

// Invoke reports a call to any registered keyword, typically one declared in
// configuration rather than built in.
func Invoke(l Logger, keyword string, args ...string) {
	l.Helper()
	l.Logf("%s", Format(keyword, args...))
}

// Format renders a [KEYWORD] marker line. The keyword and each argument are
// Go-quoted so any text, separators and surrounding spaces included, survives
// Decode unchanged.
func Format(keyword string, args ...string) string {
	var sb strings.Builder
	sb.WriteString(KeywordMarker)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Quote(keyword))
	for _, a := range args {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(a))
	}
	return sb.String()
}
