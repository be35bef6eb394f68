package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shopmart/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, username, email, password, address, contact, role, active`

func (r *UserRepo) Create(u domain.User) (int64, error) {
	res, err := r.DB.Exec(`
	  INSERT INTO users(username, email, password, address, contact, role)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.Hash, u.Address, u.Contact, u.Role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ByEmail returns nil, nil when no account matches.
func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdateProfile(id int64, username, email, contact, address string) error {
	_, err := r.DB.Exec(`
	  UPDATE users SET username = ?, email = ?, contact = ?, address = ?
	  WHERE id = ?
	`, username, email, contact, address, id)
	return err
}

func (r *UserRepo) UpdateAddress(id int64, address string) error {
	_, err := r.DB.Exec(`UPDATE users SET address = ? WHERE id = ?`, address, id)
	return err
}

func (r *UserRepo) ChangePassword(id int64, hash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password = ? WHERE id = ?`, hash, id)
	return err
}

// ---------- Sessions ----------

func (r *UserRepo) BindSession(sid string, userID int64) error {
	_, err := r.DB.Exec(`
	  INSERT INTO sessions(id, user_id, last_seen)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, last_seen=CURRENT_TIMESTAMP
	`, sid, userID)
	return err
}

// SessionUser resolves a sid cookie to its active account, nil when the
// session is anonymous, stale, or the account was deactivated.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
	  SELECT u.id, u.username, u.email, u.password, u.address, u.contact, u.role, u.active
	  FROM sessions s
	  JOIN users u ON u.id = s.user_id
	  WHERE s.id = ? AND u.active = 1
	`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL, last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// ---------- Admin ----------

type UserSummary struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Email     string `db:"email"`
	Role      string `db:"role"`
	Contact   string `db:"contact"`
	Address   string `db:"address"`
	Active    bool   `db:"active"`
	CreatedAt string `db:"created_at"`
}

func (r *UserRepo) ListAll() ([]UserSummary, error) {
	out := []UserSummary{}
	err := r.DB.Select(&out, `
	  SELECT id, username, email, role, contact, address, active, created_at
	  FROM users
	  ORDER BY created_at DESC, id DESC
	`)
	return out, err
}

func (r *UserRepo) ListCustomers(limit int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	out := []UserSummary{}
	err := r.DB.Select(&out, `
	  SELECT id, username, email, role, contact, address, active, created_at
	  FROM users
	  WHERE role <> 'admin'
	  ORDER BY id DESC
	  LIMIT ?
	`, limit)
	return out, err
}

// Deactivate soft-deletes a user. Admin accounts are never deactivated; a
// zero row count means the target was missing or an admin.
func (r *UserRepo) Deactivate(id int64) (bool, error) {
	res, err := r.DB.Exec(`UPDATE users SET active = 0 WHERE id = ? AND role <> 'admin'`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type UserStats struct {
	TotalUsers int `db:"total_users"`
	AdminCount int `db:"admin_count"`
}

func (r *UserRepo) Stats() (UserStats, error) {
	var s UserStats
	err := r.DB.Get(&s, `
	  SELECT COUNT(*) AS total_users,
	         SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END) AS admin_count
	  FROM users
	`)
	return s, err
}
