package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/db"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser loads a single user.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return user, err
}

// CreateUser inserts an account with the given password hash and role.
func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash, role string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `INSERT INTO users (email, name, password_hash, role)
VALUES ($1, $2, $3, $4) RETURNING `+userColumns, email, name, passwordHash, role))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %s", shared.ErrDuplicate, email)
		}
		return User{}, err
	}
	return user, nil
}

// ListPrivilegedIDs returns active users whose assignment holds an admin role.
// Matching uses the same verbatim rules as the route guard fallback.
func (r *Repository) ListPrivilegedIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, role FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var (
			id   int64
			role string
		)
		if err := rows.Scan(&id, &role); err != nil {
			return nil, err
		}
		if rbac.HasRole(role, rbac.AdminRoles...) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// UpdateRole overwrites a stored assignment outside of a transaction.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role string) error {
	return updateRole(ctx, r.pool, id, role)
}

// WithTx runs fn inside a database transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func updateRole(ctx context.Context, q execer, id int64, role string) error {
	tag, err := q.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) GetUserForUpdate(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return user, err
}

// LockSuperAdmins locks every active super-admin row and returns their count,
// serialising concurrent demotions.
func (t *txRepository) LockSuperAdmins(ctx context.Context) (int, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, role FROM users WHERE is_active AND role LIKE '%super-admin%' FOR UPDATE`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	count := 0
	for rows.Next() {
		var (
			id   int64
			role string
		)
		if err := rows.Scan(&id, &role); err != nil {
			return 0, err
		}
		if holdsSuperAdmin(role) {
			count++
		}
	}
	return count, rows.Err()
}

func (t *txRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	return updateRole(ctx, t.tx, id, role)
}

var (
	_ RepositoryPort = (*Repository)(nil)
	_ TxRepository   = (*txRepository)(nil)
)
