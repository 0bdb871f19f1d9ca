package core

// EffectiveStatus derives the status a bill should be shown with.
//
// A stored paid status is authoritative and never overridden. Otherwise the
// bill is overdue when its due date is strictly before today (calendar days,
// time of day ignored) and pending in every other case, including a stored
// overdue bill whose due date was later moved forward.
func EffectiveStatus(stored BillStatus, due, today Date) BillStatus {
	if stored == BillPaid {
		return BillPaid
	}
	if due.Before(today) {
		return BillOverdue
	}
	return BillPending
}

// EffectiveStatus is the status of b as seen on the given day.
func (b Bill) EffectiveStatus(today Date) BillStatus {
	return EffectiveStatus(b.Status, b.DueDate, today)
}

// WithEffectiveStatus returns a copy of b carrying its effective status.
// The receiver is left untouched.
func (b Bill) WithEffectiveStatus(today Date) Bill {
	b.Status = b.EffectiveStatus(today)
	return b
}

// NextOccurrence returns the pending bill that follows a paid recurring
// bill, due one month later. Identity and timestamps are left for the store.
func (b Bill) NextOccurrence() Bill {
	return Bill{
		UserID:    b.UserID,
		Name:      b.Name,
		Amount:    b.Amount,
		DueDate:   b.DueDate.AddMonths(1),
		Status:    BillPending,
		Category:  b.Category,
		Recurring: true,
	}
}
