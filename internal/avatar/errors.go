// Package avatar resolves the profile image embedded in the résumé.
package avatar

import "fmt"

// LookupError represents a failure looking up a profile or downloading its avatar
type LookupError struct {
	Handle  string
	Message string
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("avatar lookup error for %q: %s: %v", e.Handle, e.Message, e.Cause)
	}
	return fmt.Sprintf("avatar lookup error for %q: %s", e.Handle, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}
