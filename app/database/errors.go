package database

import (
	"errors"

	sqlite3 "modernc.org/sqlite"
)

var (
	// ErrDuplicateFeed is returned when a feed with the same URL already exists.
	ErrDuplicateFeed = errors.New("feed with this URL already exists")

	// ErrDuplicateDelivery is returned when a ledger row for the
	// (recipient, item) pair already exists. The eligibility query excludes
	// such pairs, so hitting this indicates a selection bug or a race lost
	// to a concurrent pass; either way the insert fails loudly.
	ErrDuplicateDelivery = errors.New("delivery record for this recipient and item already exists")

	ErrNotFound = errors.New("record not found")
)

// SQLITE_CONSTRAINT_PRIMARYKEY and SQLITE_CONSTRAINT_UNIQUE extended codes.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteConstraintUnique || se.Code() == sqliteConstraintPrimaryKey
	}
	return false
}
