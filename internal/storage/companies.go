package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

type CompanyRepository struct {
	pool *db.Pool
}

func NewCompanyRepository(pool *db.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create inserts the tenant's company profile. One per account; name and slug
// are unique across all tenants.
func (r *CompanyRepository) Create(ctx context.Context, c model.Company) (model.Company, error) {
	c.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (id, owner_id, name, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.OwnerID, c.Name, c.Slug).Scan(&c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Company{}, Conflict("name", "company name already taken")
		}
		return model.Company{}, err
	}
	return c, nil
}

func (r *CompanyRepository) GetByOwner(ctx context.Context, ownerID string) (model.Company, error) {
	var c model.Company
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, slug, created_at
		FROM companies
		WHERE owner_id = $1
	`, ownerID).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Company{}, ErrNotFound
		}
		return model.Company{}, err
	}
	return c, nil
}

func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (model.Company, error) {
	var c model.Company
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, slug, created_at
		FROM companies
		WHERE slug = $1
	`, slug).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Company{}, ErrNotFound
		}
		return model.Company{}, err
	}
	return c, nil
}

// Update renames the owner's company. The slug is recomputed by the caller
// from the new name before this is invoked.
func (r *CompanyRepository) Update(ctx context.Context, c model.Company) (model.Company, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE companies
		SET name = $3, slug = $4
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`, c.ID, c.OwnerID, c.Name, c.Slug).Scan(&c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Company{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.Company{}, Conflict("name", "company name already taken")
		}
		return model.Company{}, err
	}
	return c, nil
}

func (r *CompanyRepository) Delete(ctx context.Context, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE owner_id = $1`, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
