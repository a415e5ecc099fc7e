package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/internal/database"
)

const (
	prefixCustomer = "KH"
	prefixEmployee = "EP"
	prefixReceived = "RN"
	prefixDelivery = "DN"
)

// nextID returns the next sequential id of table, e.g. KH06 after KH05. It
// must run in the transaction that inserts the row. On postgres an advisory
// lock keyed by the table name blocks concurrent generators until commit;
// SQLite runs a single writer connection.
func nextID(ctx context.Context, tx *sqlx.Tx, table, column, prefix string) (string, error) {
	if tx.DriverName() == database.DriverPostgres {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
			return "", fmt.Errorf("lock %s ids: %w", table, err)
		}
	}
	var ids []string
	query := "SELECT " + column + " FROM " + table + " WHERE " + column + " LIKE ?"
	if err := sel(ctx, tx, &ids, query, prefix+"%"); err != nil {
		return "", fmt.Errorf("scan %s ids: %w", table, err)
	}
	return followingID(prefix, ids), nil
}

// followingID renders max(numeric suffix)+1 with at least two digits. Ids
// without a numeric suffix are ignored and an empty set starts at 01.
func followingID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		digits, ok := strings.CutPrefix(id, prefix)
		if !ok || digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%02d", prefix, highest+1)
}
