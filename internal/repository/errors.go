// Package repository implements the persistence layer over MySQL. Each
// repository wraps one table family and exposes plain and ...Tx method
// variants; handlers own the transaction boundary. Failure taxonomy
// (not found, forbidden, validation, conflict) lives in the lifecycle
// package so repositories, workflows and handlers agree on sentinels.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (code 1062). Used to translate unique-key races into sentinel errors,
// e.g. the one-acknowledgment-per-booking upsert.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
