package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

type ClientRepository struct {
	pool *db.Pool
}

func NewClientRepository(pool *db.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) Create(ctx context.Context, c model.Client) (model.Client, error) {
	c.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (id, owner_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.OwnerID, c.Name, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Client{}, Conflict("name", "client with this name and email already exists")
		}
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) Get(ctx context.Context, id string) (model.Client, error) {
	var c model.Client
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, email, created_at
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Client{}, ErrNotFound
		}
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, ownerID string) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, name, email, created_at
		FROM clients
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c model.Client) (model.Client, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $3, email = $4
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`, c.ID, c.OwnerID, c.Name, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Client{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.Client{}, Conflict("name", "client with this name and email already exists")
		}
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM clients WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
