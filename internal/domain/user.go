package domain

import "strconv"

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type User struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	CreatedAt string `db:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

func (u *User) LogID() string { return strconv.FormatInt(u.ID, 10) }
