package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned by repositories when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneTaken is returned when the phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already registered")
)

// Repository persists users.
type Repository interface {
	// Create stores the user and returns it with its generated ID.
	Create(ctx context.Context, user User) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateTokenVersion(ctx context.Context, id int64, version int) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, phone, name, password_hash, token_version, created_at`

// Create inserts a new user. A concurrent insert of the same phone surfaces
// as ErrPhoneTaken through the unique index.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	var name *string
	if user.Name != "" {
		name = &user.Name
	}
	row := r.db.QueryRow(ctx, `INSERT INTO users (phone, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4) RETURNING `+userColumns, user.Phone, name, user.PasswordHash, user.CreatedAt.UTC())
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrPhoneTaken
		}
		return User{}, err
	}
	return created, nil
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// UpdateTokenVersion stores a new token version, invalidating older tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id int64, version int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET token_version = $1 WHERE id = $2`, version, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user User
		name *string
	)
	if err := row.Scan(&user.ID, &user.Phone, &name, &user.PasswordHash, &user.TokenVersion, &user.CreatedAt); err != nil {
		return User{}, err
	}
	if name != nil {
		user.Name = *name
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
