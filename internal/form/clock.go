package form

import "time"

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// Clock schedules the post-success reset.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
