package domain

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Employee struct {
	ID        string    `json:"employee_id" db:"employee_id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	Fullname  string    `json:"fullname" db:"fullname"`
	Address   string    `json:"address" db:"address"`
	Phone     string    `json:"phoneNumber" db:"phone_number"`
	Role      string    `json:"role" db:"role"`
	IsLocked  bool      `json:"isLocked" db:"is_locked"`
	CreatedAt Timestamp `json:"createdAt" db:"created_at"`
	UpdatedAt Timestamp `json:"updatedAt" db:"updated_at"`
}
