package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall-clock time in the local zone so calendar days
// follow the user's notion of "today".
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
