package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/libs/db"
)

// CatalogRepository stores service categories and services. Category names are
// unique per owner; service names are unique per (owner, category), where two
// NULL categories compare equal.
type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, ownerID, name string) (model.ServiceCategory, error) {
	cat := model.ServiceCategory{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO service_categories (id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, cat.ID, cat.OwnerID, cat.Name).Scan(&cat.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.ServiceCategory{}, Conflict("name", "category with this name already exists")
		}
		return model.ServiceCategory{}, err
	}
	return cat, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (model.ServiceCategory, error) {
	var cat model.ServiceCategory
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, created_at
		FROM service_categories
		WHERE id = $1
	`, id).Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.ServiceCategory{}, ErrNotFound
		}
		return model.ServiceCategory{}, err
	}
	return cat, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, ownerID string) ([]model.ServiceCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, name, created_at
		FROM service_categories
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ServiceCategory{}
	for rows.Next() {
		var cat model.ServiceCategory
		if err := rows.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, cat model.ServiceCategory) (model.ServiceCategory, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE service_categories
		SET name = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`, cat.ID, cat.OwnerID, cat.Name).Scan(&cat.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.ServiceCategory{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.ServiceCategory{}, Conflict("name", "category with this name already exists")
		}
		return model.ServiceCategory{}, err
	}
	return cat, nil
}

// DeleteCategory removes the category and, via cascade, every service in it.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM service_categories WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) CreateService(ctx context.Context, s model.Service) (model.Service, error) {
	s.ID = uuid.NewString()
	if err := r.checkServiceName(ctx, s, ""); err != nil {
		return model.Service{}, err
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, owner_id, category_id, name, slug, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.OwnerID, s.CategoryID, s.Name, s.Slug, s.DurationMinutes).Scan(&s.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Service{}, Conflict("name", "service with this name already exists in the category")
		}
		return model.Service{}, err
	}
	return s, nil
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, category_id::text, name, slug, duration_minutes, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.OwnerID, &s.CategoryID, &s.Name, &s.Slug, &s.DurationMinutes, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Service{}, ErrNotFound
		}
		return model.Service{}, err
	}
	return s, nil
}

func (r *CatalogRepository) ListServices(ctx context.Context, ownerID string) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, category_id::text, name, slug, duration_minutes, created_at
		FROM services
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.CategoryID, &s.Name, &s.Slug, &s.DurationMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListServicesByCategory backs the embedded services in a category detail.
func (r *CatalogRepository) ListServicesByCategory(ctx context.Context, categoryID string) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, category_id::text, name, slug, duration_minutes, created_at
		FROM services
		WHERE category_id = $1
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.CategoryID, &s.Name, &s.Slug, &s.DurationMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s model.Service) (model.Service, error) {
	if err := r.checkServiceName(ctx, s, s.ID); err != nil {
		return model.Service{}, err
	}
	err := r.pool.QueryRow(ctx, `
		UPDATE services
		SET category_id = $3, name = $4, slug = $5, duration_minutes = $6
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`, s.ID, s.OwnerID, s.CategoryID, s.Name, s.Slug, s.DurationMinutes).Scan(&s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Service{}, ErrNotFound
		}
		if IsUniqueViolation(err) {
			return model.Service{}, Conflict("name", "service with this name already exists in the category")
		}
		return model.Service{}, err
	}
	return s, nil
}

func (r *CatalogRepository) DeleteService(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM services WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// checkServiceName enforces per-(owner, category) name uniqueness including
// the uncategorized bucket, which the table's UNIQUE constraint cannot cover
// because Postgres treats NULLs as distinct.
func (r *CatalogRepository) checkServiceName(ctx context.Context, s model.Service, excludeID string) error {
	var exclude *string
	if excludeID != "" {
		exclude = &excludeID
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM services
			WHERE owner_id = $1
			  AND category_id IS NOT DISTINCT FROM $2
			  AND name = $3
			  AND ($4::uuid IS NULL OR id != $4::uuid)
		)
	`, s.OwnerID, s.CategoryID, s.Name, exclude).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return Conflict("name", "service with this name already exists in the category")
	}
	return nil
}
