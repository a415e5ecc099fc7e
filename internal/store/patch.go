package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

// patch builds the SET clause of a partial update. Only columns named in
// allowed may be set, so caller supplied field names never reach the SQL.
type patch struct {
	table   string
	allowed map[string]bool
	cols    []string
	args    []any
	err     error
}

func newPatch(table string, allowed ...string) *patch {
	p := &patch{table: table, allowed: make(map[string]bool, len(allowed))}
	for _, col := range allowed {
		p.allowed[col] = true
	}
	return p
}

// Set records col = value. A nil value leaves the column untouched.
func (p *patch) Set(col string, value *string) *patch {
	if value == nil {
		return p
	}
	if !p.allowed[col] {
		p.err = fmt.Errorf("column %q is not updatable on %s", col, p.table)
		return p
	}
	p.cols = append(p.cols, col)
	p.args = append(p.args, *value)
	return p
}

func (p *patch) Empty() bool { return len(p.cols) == 0 }

// SQL returns the UPDATE statement and its arguments. updated_at is stamped
// when stamp is true.
func (p *patch) SQL(keyCol, key string, stamp bool) (string, []any, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	if p.Empty() {
		return "", nil, fmt.Errorf("nothing to update on %s", p.table)
	}
	sets := make([]string, 0, len(p.cols)+1)
	for _, col := range p.cols {
		sets = append(sets, col+" = ?")
	}
	args := append([]any{}, p.args...)
	if stamp {
		sets = append(sets, "updated_at = ?")
		args = append(args, domain.NewTimestamp(timeNow()))
	}
	args = append(args, key)
	return "UPDATE " + p.table + " SET " + strings.Join(sets, ", ") + " WHERE " + keyCol + " = ?", args, nil
}

func (p *patch) apply(ctx context.Context, tx *sqlx.Tx, keyCol, key string, stamp bool) error {
	query, args, err := p.SQL(keyCol, key, stamp)
	if err != nil {
		return err
	}
	n, err := exec(ctx, tx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
