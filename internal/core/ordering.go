package core

import (
	"sort"
	"strings"
)

// SortTransactions returns a copy of txns ordered newest first.
//
// The primary key is the trailing number of the id (ids are minted from the
// creation time), compared numerically and defaulting to 0. Ties fall back
// to the transaction date, newest first; undated entries go last.
func SortTransactions(txns []Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareDigits(idSuffix(out[i].ID), idSuffix(out[j].ID)); c != 0 {
			return c > 0
		}
		di, erri := ParseDate(out[i].Date)
		dj, errj := ParseDate(out[j].Date)
		switch {
		case erri != nil && errj != nil:
			return false
		case erri != nil:
			return false
		case errj != nil:
			return true
		}
		return di.After(dj)
	})
	return out
}

// idSuffix returns the trailing decimal digits of id without leading zeros,
// or "" when there are none.
func idSuffix(id string) string {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	return strings.TrimLeft(id[i:], "0")
}

// compareDigits compares two unsigned decimal strings without leading zeros.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) > len(b) {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}
