package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const userColumns = `id, username, password, name, phone, avatar, description,
	department_id, role_id, status, last_login_time, login_count, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) GetEnabledUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND status = ?`,
		username, domain.UserEnabled,
	)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password, name, phone, avatar, description,
			department_id, role_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Name, u.Phone, u.Avatar, u.Description,
		nullID(u.DepartmentID), nullID(u.RoleID), u.Status, now, now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id)
}

func (r *usersRepo) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	return r.exec(ctx, `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
}

func (r *usersRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_time = ?, login_count = login_count + 1 WHERE id = ?`,
		at.UTC(), id)
}

func (r *usersRepo) StrongestLegacyHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT password FROM users
		WHERE password LIKE '$2%'
		ORDER BY SUBSTR(password, 5, 2) DESC
		LIMIT 1`,
	).Scan(&hash)
	if err != nil {
		return "", mapNotFound(err)
	}
	return hash, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM users`)
	return n == 0, err
}

// exec runs an UPDATE and reports ErrNotFound when no row matched.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		deptID    sql.NullInt64
		roleID    sql.NullInt64
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Phone, &u.Avatar, &u.Description,
		&deptID, &roleID, &u.Status, &lastLogin, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.DepartmentID = deptID.Int64
	u.RoleID = roleID.Int64
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}
