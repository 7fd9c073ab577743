package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

const uniqueViolation = "23505"

var errNilPool = errors.New("PgUserRepository: nil pool")

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

const userColumns = `id::text, email, password_hash, full_name, confirmation_token, confirmed_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, u auth.User) (auth.User, error) {
	if r == nil || r.pool == nil {
		return auth.User{}, errNilPool
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth."user" (email, password_hash, full_name, confirmation_token, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.Email, u.PasswordHash, u.FullName, u.ConfirmationToken, u.ConfirmedAt,
	)
	stored, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.User{}, auth.ErrUserExists
		}
		return auth.User{}, err
	}
	return *stored, nil
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, `WHERE id = $1::uuid`, id)
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *PgUserRepository) FindByConfirmationToken(ctx context.Context, token string) (*auth.User, error) {
	return r.findOne(ctx, `WHERE confirmation_token = $1`, token)
}

func (r *PgUserRepository) Confirm(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE auth."user" SET confirmed_at = $2, confirmation_token = NULL
		WHERE id = $1::uuid
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *PgUserRepository) findOne(ctx context.Context, where string, arg any) (*auth.User, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM auth."user" `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	return u, err
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.ConfirmationToken, &u.ConfirmedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
