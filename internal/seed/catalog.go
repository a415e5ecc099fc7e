// Package seed loads reference data and the bootstrap admin.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/internal/database"
	"pharmacy/m/internal/store"
)

// catalogKinds maps the first CSV column onto an insert. Rows carry the
// kind, the id and then the remaining columns in table order.
var catalogKinds = map[string]struct {
	table   string
	columns []string
}{
	"manufacturer": {"manufacturers", []string{"manufacturer_id", "name", "nation"}},
	"supplier":     {"suppliers", []string{"supplier_id", "name", "address", "representative"}},
	"category":     {"medicine_categories", []string{"category_id", "name", "description"}},
	"medicine": {"medicines", []string{"medicine_id", "name", "manufacturer_id", "supplier_id",
		"category_id", "effects", "quantity", "price"}},
}

// Catalog ingests the CSV at path, skipping rows whose id already exists.
// Referenced rows must appear before the medicines that use them. It returns
// the number of rows inserted.
func Catalog(ctx context.Context, db *sqlx.DB, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer file.Close()
	return LoadCatalog(ctx, db, file)
}

// LoadCatalog is Catalog over an already open reader.
func LoadCatalog(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	inserted := 0
	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		line := 0
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			line++
			kind := strings.ToLower(strings.TrimSpace(record[0]))
			if line == 1 && kind == "kind" {
				continue
			}
			def, ok := catalogKinds[kind]
			if !ok {
				return fmt.Errorf("catalog line %d: unknown kind %q", line, record[0])
			}
			values := record[1:]
			if len(values) != len(def.columns) {
				return fmt.Errorf("catalog line %d: %s needs %d fields, got %d", line, kind, len(def.columns), len(values))
			}
			args := make([]any, len(values))
			for i, v := range values {
				args[i] = strings.TrimSpace(v)
			}
			q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
				def.table, strings.Join(def.columns, ", "),
				strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), def.columns[0])
			res, err := tx.ExecContext(ctx, tx.Rebind(q), args...)
			if err != nil {
				return fmt.Errorf("catalog line %d: %w", line, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("catalog line %d: %w", line, err)
			}
			inserted += int(n)
		}
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Admin creates the bootstrap admin when credentials are configured and no
// admin exists. It reports whether an account was created.
func Admin(ctx context.Context, users *store.Users, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	return users.EnsureAdmin(ctx, username, password)
}
