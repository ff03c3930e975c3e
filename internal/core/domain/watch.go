package domain

import "time"

// WatchState tracks the active Gmail push notification watch.
// Watches lapse after roughly seven days and must be renewed before
// the expiration or push notifications silently stop.
type WatchState struct {
	// HistoryID is the mailbox history ID returned by users.watch.
	HistoryID uint64
	// Expiration is when the watch lapses.
	Expiration time.Time
	// RenewedAt is when the watch was last established.
	RenewedAt time.Time
}

// NeedsRenewal reports whether the watch should be re-established,
// using the given safety margin before the hard expiration.
func (w *WatchState) NeedsRenewal(now time.Time, margin time.Duration) bool {
	if w == nil || w.Expiration.IsZero() {
		return true
	}
	return now.After(w.Expiration.Add(-margin))
}
