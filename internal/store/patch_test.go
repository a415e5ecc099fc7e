package store

import (
	"strings"
	"testing"
)

func strp(s string) *string { return &s }

func TestPatchSQL(t *testing.T) {
	p := newPatch("employees", "fullname", "address", "phone_number").
		Set("fullname", strp("Alice")).
		Set("address", nil).
		Set("phone_number", strp("0912345678"))

	query, args, err := p.SQL("employee_id", "EP01", false)
	if err != nil {
		t.Fatalf("SQL: %v", err)
	}
	want := "UPDATE employees SET fullname = ?, phone_number = ? WHERE employee_id = ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 3 || args[0] != "Alice" || args[1] != "0912345678" || args[2] != "EP01" {
		t.Errorf("args = %v", args)
	}

	stamped, stampedArgs, err := p.SQL("employee_id", "EP01", true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stamped, "updated_at = ?") || len(stampedArgs) != 4 {
		t.Errorf("stamped = %q %v", stamped, stampedArgs)
	}
}

func TestPatchRejectsUnknownColumn(t *testing.T) {
	p := newPatch("employees", "fullname").Set("role", strp("admin"))
	if _, _, err := p.SQL("employee_id", "EP01", false); err == nil {
		t.Fatal("expected whitelist error")
	}
}

func TestPatchEmpty(t *testing.T) {
	p := newPatch("employees", "fullname").Set("fullname", nil)
	if !p.Empty() {
		t.Fatal("expected empty patch")
	}
	if _, _, err := p.SQL("employee_id", "EP01", false); err == nil {
		t.Fatal("expected error for empty patch")
	}
}
