package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// --- Users ---

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, nilIfEmpty(u.Email), nilIfEmpty(u.PasswordHash),
		u.Name, nilIfEmpty(u.AvatarURL),
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return wrapErr("userRepo.Create", err)
	}

	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	var email, passwordHash, avatarURL *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &email, &passwordHash, &u.Name, &avatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapErr("userRepo.GetByID", err)
	}

	u.Email = derefStr(email)
	u.PasswordHash = derefStr(passwordHash)
	u.AvatarURL = derefStr(avatarURL)

	return &u, nil
}

// GetByEmail matches the address case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	var dbEmail, passwordHash, avatarURL *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, avatar_url, created_at, updated_at
		 FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &dbEmail, &passwordHash, &u.Name, &avatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapErr("userRepo.GetByEmail", err)
	}

	u.Email = derefStr(dbEmail)
	u.PasswordHash = derefStr(passwordHash)
	u.AvatarURL = derefStr(avatarURL)

	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email = $1, password_hash = $2, name = $3, avatar_url = $4, updated_at = now()
		 WHERE id = $5`,
		nilIfEmpty(u.Email), nilIfEmpty(u.PasswordHash),
		u.Name, nilIfEmpty(u.AvatarURL),
		u.ID,
	)
	if err != nil {
		return wrapErr("userRepo.Update", err)
	}

	return notFoundIfNone("userRepo.Update", tag)
}

// --- OAuth Links ---

func (r *UserRepo) CreateOAuthLink(ctx context.Context, link *domain.UserOAuthLink) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_oauth_links (id, user_id, provider, provider_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.UserID, link.Provider, link.ProviderID, link.CreatedAt,
	)
	if err != nil {
		return wrapErr("userRepo.CreateOAuthLink", err)
	}

	return nil
}

func (r *UserRepo) GetOAuthLink(ctx context.Context, provider, providerID string) (*domain.UserOAuthLink, error) {
	var link domain.UserOAuthLink

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, provider, provider_id, created_at
		 FROM user_oauth_links WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	).Scan(&link.ID, &link.UserID, &link.Provider, &link.ProviderID, &link.CreatedAt)
	if err != nil {
		return nil, wrapErr("userRepo.GetOAuthLink", err)
	}

	return &link, nil
}
