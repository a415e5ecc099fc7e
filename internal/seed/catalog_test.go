package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pharmacy/m/internal/store"
	"pharmacy/m/internal/testutil"
)

const sampleCatalog = `kind,id,name
manufacturer,M01,Traphaco,Vietnam
supplier,S01,Phuong Dong,12 Le Loi,Nguyen An
category,C01,Pain relief,Analgesics
# medicines reference the rows above
medicine,MD01,Paracetamol,M01,S01,C01,Fever,200,1.50
`

func TestCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := Catalog(ctx, db, path)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if n != 4 {
		t.Errorf("inserted = %d, want 4", n)
	}
	n, err = Catalog(ctx, db, path)
	if err != nil {
		t.Fatalf("second Catalog: %v", err)
	}
	if n != 0 {
		t.Errorf("second run inserted = %d, want 0", n)
	}

	var name string
	if err := db.Get(&name, `SELECT name FROM medicines WHERE medicine_id = 'MD01'`); err != nil || name != "Paracetamol" {
		t.Errorf("medicine name = %q, %v", name, err)
	}
}

func TestCatalogRejectsBadRows(t *testing.T) {
	ctx := context.Background()
	tests := map[string]string{
		"unknown kind":  "pharmacy,P1,x\n",
		"short row":     "manufacturer,M01\n",
		"dangling refs": "medicine,MD01,Paracetamol,M9,S9,C9,Fever,1,1\n",
	}
	for name, csv := range tests {
		t.Run(name, func(t *testing.T) {
			db := testutil.NewDB(t)
			if _, err := LoadCatalog(ctx, db, strings.NewReader(csv)); err == nil {
				t.Error("expected an error")
			}
			var count int
			if err := db.Get(&count, `SELECT COUNT(*) FROM manufacturers`); err != nil || count != 0 {
				t.Errorf("manufacturers = %d, %v", count, err)
			}
		})
	}
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := store.New(db).Users

	created, err := Admin(ctx, users, "", "")
	if err != nil || created {
		t.Fatalf("unconfigured Admin = %v, %v", created, err)
	}
	created, err = Admin(ctx, users, "root", "Root@1234")
	if err != nil || !created {
		t.Fatalf("Admin = %v, %v", created, err)
	}
	created, err = Admin(ctx, users, "other", "Other@1234")
	if err != nil || created {
		t.Errorf("second Admin = %v, %v", created, err)
	}
	if _, err := users.Authenticate(ctx, "root", "Root@1234"); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
}
