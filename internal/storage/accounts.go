package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

type AccountRepository struct {
	pool *db.Pool
}

func NewAccountRepository(pool *db.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, email, passwordHash string) (model.Account, error) {
	acct := model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, acct.ID, acct.Email, acct.PasswordHash).Scan(&acct.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Account{}, Conflict("email", "email already registered")
		}
		return model.Account{}, err
	}
	return acct, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var acct model.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, password_hash, created_at
		FROM accounts
		WHERE email = $1
	`, email).Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	return acct, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (model.Account, error) {
	var acct model.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	return acct, nil
}
