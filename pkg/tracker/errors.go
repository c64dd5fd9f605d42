package tracker

import "fmt"

// PersistenceError reports that the usage map could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("writing resource usage map: %v", e.Err)
	}
	return fmt.Sprintf("writing resource usage map to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
