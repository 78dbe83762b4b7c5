package session

import "fmt"

// IllegalStateError means a handler ran against a state its caller must
// never produce, e.g. a submit without a pending click or a selection of
// an id that was never rendered.
type IllegalStateError struct {
	Op     string
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state: %s: %s", e.Op, e.Reason)
}

// GeolocationUnavailableError is reported when the start-up position
// request fails. Map features stay off for the rest of the session.
type GeolocationUnavailableError struct {
	Err error
}

func (e *GeolocationUnavailableError) Error() string {
	return "geolocation unavailable: " + e.Err.Error()
}

func (e *GeolocationUnavailableError) Unwrap() error { return e.Err }
