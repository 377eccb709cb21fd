package suggest

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// digest computes a stable key from (booking_id, scheduled_start
// truncated to the hour), matching §4.3's cache key definition.
func digest(bookingID string, scheduledStart time.Time) string {
	truncated := scheduledStart.Truncate(time.Hour).UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(bookingID + "|" + truncated))
	return hex.EncodeToString(sum[:])
}
