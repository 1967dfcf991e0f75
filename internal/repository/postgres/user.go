package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, name, email, password_hash, phone, gender, birth_date, photo_url, role, created_at, updated_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, email, password_hash, phone, gender, birth_date, photo_url, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	rows, _ := r.DB.Query(ctx, createUser,
		u.ID, u.Name, u.Email, u.HashedPassword, u.Phone, u.Gender, u.BirthDate, u.PhotoURL, string(u.Role), time.Now(),
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		if _, ok := pgError(err, pgerrcode.UniqueViolation); ok {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE lower(email) = lower($1)
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
ORDER BY created_at, id
`

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, _ := r.DB.Query(ctx, listUsers)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

const updateUser = `-- name: UpdateUser
UPDATE users
SET name = $2, email = $3, phone = $4, gender = $5, birth_date = $6, photo_url = $7, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, id uuid.UUID, p models.UserProfile) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser, id, p.Name, p.Email, p.Phone, p.Gender, p.BirthDate, p.PhotoURL)
	user, err := collectUser(rows)

	if _, ok := pgError(err, pgerrcode.UniqueViolation); ok {
		return user, apperrors.ErrUserAlreadyExists
	}

	return user, err
}

const setPassword = `-- name: SetPassword
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE lower(email) = lower($1)
RETURNING ` + userColumns

func (r *UserRepo) SetPassword(ctx context.Context, email string, hashedPassword string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setPassword, email, hashedPassword)
	return collectUser(rows)
}

const setRole = `-- name: SetRole
UPDATE users
SET role = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetRole(ctx context.Context, id uuid.UUID, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, apperrors.ErrInvalidRole
	}

	rows, _ := r.DB.Query(ctx, setRole, id, string(role))
	return collectUser(rows)
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users WHERE id = $1
`

func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, id)

	switch {
	case err != nil:
		if _, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
			return apperrors.ErrUserHasHistory
		}
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Phone, &u.Gender, &u.BirthDate, &u.PhotoURL, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = models.Role(role)
	return u, err
}
