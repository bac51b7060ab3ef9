// Package sysclock provides the production Clock driver.
package sysclock

import "time"

// Clock returns the wall-clock time formatted as ISO-8601 UTC.
type Clock struct{}

// New returns a production Clock.
func New() Clock { return Clock{} }

// Now returns the current time as an ISO-8601 UTC string.
func (Clock) Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
