package geo

import (
	"errors"
	"sync"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// Reported is a one-shot position source fed by the client: either the
// coordinate the browser resolved or the reason it could not.
type Reported struct {
	at     Coordinate
	reason string
	ok     bool

	once sync.Once
}

func Resolved(at Coordinate) *Reported {
	return &Reported{at: at, ok: true}
}

func Failed(reason string) *Reported {
	return &Reported{reason: reason}
}

// RequestPosition answers exactly once; later calls are ignored.
func (r *Reported) RequestPosition(onSuccess func(Coordinate), onFailure func(error)) {
	r.once.Do(func() {
		if !r.ok {
			onFailure(reasonError(r.reason))
			return
		}
		if err := r.at.Validate(); err != nil {
			onFailure(err)
			return
		}
		onSuccess(r.at)
	})
}

// Static always resolves to a fixed coordinate, used when the service runs
// with a configured home position.
type Static Coordinate

func (s Static) RequestPosition(onSuccess func(Coordinate), onFailure func(error)) {
	at := Coordinate(s)
	if err := at.Validate(); err != nil {
		onFailure(err)
		return
	}
	onSuccess(at)
}

func reasonError(reason string) error {
	if reason == "" {
		return ErrPositionUnavailable
	}
	return &unavailableError{reason: reason}
}

type unavailableError struct{ reason string }

func (e *unavailableError) Error() string { return ErrPositionUnavailable.Error() + ": " + e.reason }
func (e *unavailableError) Unwrap() error { return ErrPositionUnavailable }
