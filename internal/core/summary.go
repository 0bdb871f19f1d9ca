package core

// Snapshot is one consistent fetch of a user's four record lists.
// Aggregations are always computed from a snapshot, never from live state.
type Snapshot struct {
	Transactions []Transaction
	Bills        []Bill
	Goals        []Goal
	Investments  []Investment
}

// IsEmpty reports whether the user has no records at all.
func (s Snapshot) IsEmpty() bool {
	return len(s.Transactions) == 0 && len(s.Bills) == 0 &&
		len(s.Goals) == 0 && len(s.Investments) == 0
}
