// Package repository implements election.Store and the account tables on
// MySQL.  Missing rows are reported as ErrNotFound and a second ledger
// entry for the same voter and election as election.ErrDuplicateVote, so
// the service layer never has to look at driver errors.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/election-tally/internal/election"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = election.ErrNotFound

// ErrUsernameExists is returned by UserRepo.Create for a taken username.
var ErrUsernameExists = errors.New("username already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors
// untouched.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func idArg(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}
