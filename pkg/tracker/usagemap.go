package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dkoosis/resusage/pkg/resource"
)

// UsageMap holds the records of each test, in the order tests first started.
// Records within a test keep invocation order. The zero value is not usable;
// call NewUsageMap.
type UsageMap struct {
	order   []string
	records map[string][]resource.Record
}

// NewUsageMap returns an empty map.
func NewUsageMap() *UsageMap {
	return &UsageMap{records: make(map[string][]resource.Record)}
}

// Start creates an empty entry for test, or empties an existing one.
// An existing test keeps its original position.
func (u *UsageMap) Start(test string) {
	if _, ok := u.records[test]; !ok {
		u.order = append(u.order, test)
	}
	u.records[test] = []resource.Record{}
}

// Has reports whether test has an entry.
func (u *UsageMap) Has(test string) bool {
	_, ok := u.records[test]
	return ok
}

// Append adds rec to test's entry, creating the entry if needed.
func (u *UsageMap) Append(test string, rec resource.Record) {
	if _, ok := u.records[test]; !ok {
		u.order = append(u.order, test)
	}
	u.records[test] = append(u.records[test], rec)
}

// Records returns a copy of test's records.
func (u *UsageMap) Records(test string) []resource.Record {
	recs := u.records[test]
	out := make([]resource.Record, len(recs))
	copy(out, recs)
	return out
}

// Tests returns test names in first-start order.
func (u *UsageMap) Tests() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Len returns the number of tests.
func (u *UsageMap) Len() int { return len(u.order) }

// RecordCount returns the number of records across all tests.
func (u *UsageMap) RecordCount() int {
	n := 0
	for _, recs := range u.records {
		n += len(recs)
	}
	return n
}

// MarshalJSON encodes the map as a JSON object keyed by test name, keeping
// test order. encoding/json sorts map keys, so the object is built by hand.
func (u *UsageMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, test := range u.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(test)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		recs := u.records[test]
		if recs == nil {
			recs = []resource.Record{}
		}
		val, err := marshalNoEscape(recs)
		if err != nil {
			return nil, fmt.Errorf("encoding records for %q: %w", test, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (u *UsageMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("usage map: expected JSON object, got %v", tok)
	}

	u.order = nil
	u.records = make(map[string][]resource.Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		test, ok := tok.(string)
		if !ok {
			return fmt.Errorf("usage map: expected test name, got %v", tok)
		}
		var recs []resource.Record
		if err := dec.Decode(&recs); err != nil {
			return fmt.Errorf("usage map: records for %q: %w", test, err)
		}
		if recs == nil {
			recs = []resource.Record{}
		}
		if _, dup := u.records[test]; !dup {
			u.order = append(u.order, test)
		}
		u.records[test] = recs
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// marshalNoEscape encodes v without HTML escaping so paths such as
// "a&b" are written as-is.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
