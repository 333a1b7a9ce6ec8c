package enums

// SyncState describes the health of the live catalog subscription.
type SyncState string

const (
	SyncStateConnecting SyncState = "connecting"
	SyncStateLive       SyncState = "live"
	SyncStateError      SyncState = "error"
	SyncStateClosed     SyncState = "closed"
)

// String implements fmt.Stringer.
func (s SyncState) String() string {
	return string(s)
}

// IsTerminal reports whether no further snapshots will be delivered.
func (s SyncState) IsTerminal() bool {
	return s == SyncStateClosed
}
