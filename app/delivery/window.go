package delivery

import (
	"fmt"
	"time"
)

// Half-width of the delivery window. With a 30 minute scheduler period this
// guarantees at least one tick lands inside every recipient's window.
const windowSlack = 30 * time.Minute

// IsWithinWindow reports whether now falls within half an hour of the
// recipient's preferred delivery time, evaluated in the recipient's own
// time zone. A malformed zone or time preference never matches.
func IsWithinWindow(deliveryTime, timezone string, now time.Time) bool {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return false
	}

	var hour, minute int
	if _, err := fmt.Sscanf(deliveryTime, "%d:%d", &hour, &minute); err != nil {
		return false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return false
	}

	local := now.In(loc)
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	// The clock is compared linearly within the day; a preference near
	// midnight matches only ticks on its own side of it.
	diff := local.Sub(target)
	if diff < 0 {
		diff = -diff
	}

	return diff <= windowSlack
}
