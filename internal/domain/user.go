package domain

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Hash     string `db:"password"`
	Address  string `db:"address"`
	Contact  string `db:"contact"`
	Role     string `db:"role"` // user | admin
	Active   bool   `db:"active"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "admin" }
