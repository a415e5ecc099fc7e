package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/auth"
	"pharmacy/m/internal/validation"
)

var (
	ErrWrongPassword = errors.New("wrong password")
	ErrLocked        = fmt.Errorf("account is locked: %w", ErrForbidden)
)

type Users struct{ s *Store }

const employeeColumns = `employee_id, username, password, fullname, address, phone_number, role, is_locked, created_at, updated_at`

// Actor is the authenticated employee performing an operation.
type Actor struct {
	ID   string
	Role string
}

type RegisterInput struct {
	Username string
	Password string
	Fullname string
	Address  string
	Phone    string
	Role     string
}

// ProfileInput carries a partial profile update. Nil fields are left as is.
type ProfileInput struct {
	Fullname *string
	Address  *string
	Phone    *string
}

// present treats a blank value as not supplied.
func present(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (p ProfileInput) normalized() ProfileInput {
	return ProfileInput{Fullname: present(p.Fullname), Address: present(p.Address), Phone: present(p.Phone)}
}

func (p ProfileInput) empty() bool {
	return p.Fullname == nil && p.Address == nil && p.Phone == nil
}

func (p ProfileInput) validate() error {
	var v validation.Errors
	if p.empty() {
		v.Add("fullname", "at least one of fullname, address or phoneNumber is required")
	}
	if p.Phone != nil {
		v.Phone("phoneNumber", *p.Phone)
	}
	return v.Err()
}

func (p ProfileInput) patch() *patch {
	return newPatch("employees", "fullname", "address", "phone_number").
		Set("fullname", p.Fullname).
		Set("address", p.Address).
		Set("phone_number", p.Phone)
}

// FilterInput searches employees. SortBy uses the JSON field names.
type FilterInput struct {
	Query  string
	SortBy string
	Order  string
}

var sortColumns = map[string]string{
	"username":    "username",
	"address":     "address",
	"fullname":    "fullname",
	"phoneNumber": "phone_number",
}

func (r *Users) get(ctx context.Context, tx *sqlx.Tx, id string) (domain.Employee, error) {
	var e domain.Employee
	err := get(ctx, tx, &e, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = ?`, id)
	return e, err
}

func (r *Users) Get(ctx context.Context, id string) (domain.Employee, error) {
	var e domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		var err error
		e, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return e, nil
}

func (r *Users) List(ctx context.Context) ([]domain.Employee, error) {
	employees := []domain.Employee{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &employees, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// Filter matches query against username, address, fullname and phone and
// sorts by a whitelisted column.
func (r *Users) Filter(ctx context.Context, in FilterInput) ([]domain.Employee, error) {
	in.Query = strings.TrimSpace(in.Query)
	order := strings.ToLower(in.Order)
	var v validation.Errors
	if in.SortBy != "" {
		if _, ok := sortColumns[in.SortBy]; !ok {
			v.Add("sortBy", "must be one of: username, address, fullname, phoneNumber")
		}
	}
	v.OneOf("order", order, "asc", "desc")
	if in.SortBy == "phoneNumber" && in.Query != "" && !allDigits(in.Query) {
		v.Add("query", "must be numeric when sorting by phoneNumber")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	column := "employee_id"
	if in.SortBy != "" {
		column = sortColumns[in.SortBy]
	}
	if order == "" {
		order = "asc"
	}
	q := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if in.Query != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(in.Query)) + "%"
		q += ` WHERE LOWER(username) LIKE ? ESCAPE '\' OR LOWER(address) LIKE ? ESCAPE '\'` +
			` OR LOWER(fullname) LIKE ? ESCAPE '\' OR phone_number LIKE ? ESCAPE '\'`
		args = append(args, like, like, like, like)
	}
	q += ` ORDER BY ` + column + ` ` + strings.ToUpper(order) + `, employee_id`

	employees := []domain.Employee{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &employees, q, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("filter employees: %w", err)
	}
	return employees, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func (r *Users) insert(ctx context.Context, tx *sqlx.Tx, in RegisterInput) (domain.Employee, error) {
	taken, err := exists(ctx, tx, "employees", "username", in.Username)
	if err != nil {
		return domain.Employee{}, err
	}
	if taken {
		return domain.Employee{}, fmt.Errorf("username %s: %w", in.Username, ErrConflict)
	}
	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.Employee{}, err
	}
	id, err := nextID(ctx, tx, "employees", "employee_id", prefixEmployee)
	if err != nil {
		return domain.Employee{}, err
	}
	_, err = exec(ctx, tx, `INSERT INTO employees (employee_id, username, password, fullname, address, phone_number, role)
                VALUES (?, ?, ?, ?, ?, ?, ?)`, id, in.Username, hashed, in.Fullname, in.Address, in.Phone, in.Role)
	if err != nil {
		return domain.Employee{}, err
	}
	return r.get(ctx, tx, id)
}

func hasAdmin(ctx context.Context, tx *sqlx.Tx) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM employees WHERE role = ?`), domain.RoleAdmin)
	return n > 0, err
}

// Register creates an account from the public sign-up form. Accounts are
// staff unless admin is requested while no admin exists yet.
func (r *Users) Register(ctx context.Context, in RegisterInput) (domain.Employee, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = domain.RoleStaff
	}
	var v validation.Errors
	v.Require("username", in.Username)
	v.Require("password", in.Password)
	v.Require("fullname", in.Fullname)
	v.Require("address", in.Address)
	v.Require("phoneNumber", in.Phone)
	v.Password("password", in.Password)
	v.Phone("phoneNumber", in.Phone)
	v.OneOf("role", in.Role, domain.RoleAdmin, domain.RoleStaff)
	if err := v.Err(); err != nil {
		return domain.Employee{}, err
	}

	var created domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if in.Role == domain.RoleAdmin {
			found, err := hasAdmin(ctx, tx)
			if err != nil {
				return err
			}
			if found {
				return fmt.Errorf("admin registration is closed: %w", ErrForbidden)
			}
		}
		var err error
		created, err = r.insert(ctx, tx, in)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("register %s: %w", in.Username, err)
	}
	return created, nil
}

// EnsureAdmin creates an admin account when none exists. It reports whether
// an account was created.
func (r *Users) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	created := false
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		found, err := hasAdmin(ctx, tx)
		if err != nil || found {
			return err
		}
		_, err = r.insert(ctx, tx, RegisterInput{Username: username, Password: password, Fullname: username, Role: domain.RoleAdmin})
		created = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return created, nil
}

// CreateByAdmin adds a staff account. An empty password falls back to
// defaultPassword.
func (r *Users) CreateByAdmin(ctx context.Context, in RegisterInput, defaultPassword string) (domain.Employee, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Role = domain.RoleStaff
	if in.Password == "" {
		in.Password = defaultPassword
	}
	var v validation.Errors
	v.Require("username", in.Username)
	v.Password("password", in.Password)
	v.Phone("phoneNumber", in.Phone)
	if err := v.Err(); err != nil {
		return domain.Employee{}, err
	}
	var created domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = r.insert(ctx, tx, in)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("create employee %s: %w", in.Username, err)
	}
	return created, nil
}

// Authenticate checks credentials. A locked account fails before the
// password is compared.
func (r *Users) Authenticate(ctx context.Context, username, password string) (domain.Employee, error) {
	var v validation.Errors
	v.Require("username", username)
	v.Require("password", password)
	if err := v.Err(); err != nil {
		return domain.Employee{}, err
	}
	var e domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &e, `SELECT `+employeeColumns+` FROM employees WHERE username = ?`, strings.TrimSpace(username))
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("login %s: %w", username, err)
	}
	if e.IsLocked {
		return domain.Employee{}, ErrLocked
	}
	if !auth.CheckPassword(e.Password, password) {
		return domain.Employee{}, ErrWrongPassword
	}
	return e, nil
}

// UpdateByAdmin edits another account's profile. Admins may edit themselves
// and staff, but not other admins.
func (r *Users) UpdateByAdmin(ctx context.Context, actor Actor, id string, in ProfileInput) (domain.Employee, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return domain.Employee{}, err
	}
	var updated domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		target, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if target.Role == domain.RoleAdmin && target.ID != actor.ID {
			return fmt.Errorf("cannot modify another admin: %w", ErrForbidden)
		}
		if err := in.patch().apply(ctx, tx, "employee_id", id, true); err != nil {
			return err
		}
		updated, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("update employee %s: %w", id, err)
	}
	return updated, nil
}

// UpdateSelf edits the caller's own profile.
func (r *Users) UpdateSelf(ctx context.Context, id string, in ProfileInput) (domain.Employee, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return domain.Employee{}, err
	}
	var updated domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := in.patch().apply(ctx, tx, "employee_id", id, true); err != nil {
			return err
		}
		var err error
		updated, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("update profile %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a staff account.
func (r *Users) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		target, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if target.Role != domain.RoleStaff {
			return fmt.Errorf("only staff accounts can be deleted: %w", ErrForbidden)
		}
		return deleteByID(ctx, tx, "employees", "employee_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	return nil
}

// ToggleLock flips the locked flag of a staff account.
func (r *Users) ToggleLock(ctx context.Context, actor Actor, id string) (domain.Employee, error) {
	var updated domain.Employee
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		target, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		switch {
		case actor.Role != domain.RoleAdmin:
			return fmt.Errorf("only admins can lock accounts: %w", ErrForbidden)
		case target.ID == actor.ID:
			return fmt.Errorf("cannot lock yourself: %w", ErrForbidden)
		case target.Role == actor.Role:
			return fmt.Errorf("cannot lock an account with the same role: %w", ErrForbidden)
		case target.Role != domain.RoleStaff:
			return fmt.Errorf("only staff accounts can be locked: %w", ErrForbidden)
		}
		locked := !target.IsLocked
		if _, err := exec(ctx, tx, `UPDATE employees SET is_locked = ?, updated_at = ? WHERE employee_id = ?`,
			locked, domain.NewTimestamp(timeNow()), id); err != nil {
			return err
		}
		updated, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Employee{}, fmt.Errorf("toggle lock %s: %w", id, err)
	}
	return updated, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (r *Users) ChangePassword(ctx context.Context, id, current, next string) error {
	var v validation.Errors
	v.Require("currentPassword", current)
	v.Require("newPassword", next)
	v.Password("newPassword", next)
	if err := v.Err(); err != nil {
		return err
	}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		e, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if !auth.CheckPassword(e.Password, current) {
			return ErrWrongPassword
		}
		hashed, err := auth.HashPassword(next)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, `UPDATE employees SET password = ?, updated_at = ? WHERE employee_id = ?`,
			hashed, domain.NewTimestamp(timeNow()), id)
		return err
	})
	if err != nil {
		return fmt.Errorf("change password %s: %w", id, err)
	}
	return nil
}
