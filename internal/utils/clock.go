package utils

import "time"

// Now is swapped out by tests that need a fixed clock.
var Now = func() time.Time {
	return time.Now().UTC()
}
