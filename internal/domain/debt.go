package domain

import "time"

const OverdueAfter = 72 * time.Hour

// ReplayBalance folds a newest-first history from the oldest entry forward.
func ReplayBalance(history []DebtEntry) int64 {
	var balance int64
	for i := len(history) - 1; i >= 0; i-- {
		balance = applyEntry(balance, history[i])
	}
	return balance
}

func (d Debtor) OldestDebt() (DebtEntry, bool) {
	var (
		oldest DebtEntry
		found  bool
	)
	for _, entry := range d.History {
		if entry.Type != EntryDebt {
			continue
		}
		if !found || entry.At.Before(oldest.At) {
			oldest = entry
			found = true
		}
	}
	return oldest, found
}

func (d Debtor) IsOverdue(now time.Time) bool {
	if d.Balance <= 0 {
		return false
	}
	oldest, ok := d.OldestDebt()
	if !ok {
		return false
	}
	return now.Sub(oldest.At) > OverdueAfter
}

func (d Debtor) DaysOutstanding(now time.Time) int {
	oldest, ok := d.OldestDebt()
	if !ok {
		return 0
	}
	age := now.Sub(oldest.At)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}

func (d Debtor) View(now time.Time) DebtorView {
	return DebtorView{
		Debtor:          d,
		Overdue:         d.IsOverdue(now),
		DaysOutstanding: d.DaysOutstanding(now),
	}
}
