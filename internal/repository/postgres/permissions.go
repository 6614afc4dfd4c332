package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type permissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *sql.DB, logger *zap.Logger) *permissionRepository {
	return &permissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *permissionRepository) Create(ctx context.Context, p *domain.Permission) error {
	query := `
		INSERT INTO permissions (id, permission_name, page_url, "group", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.PageURL, p.Group, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create permission", zap.String("name", p.Name), zap.Error(err))
		return conflictOr(err, "permission name already exists")
	}
	return nil
}

func (r *permissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Permission, error) {
	query := `
		SELECT id, permission_name, page_url, "group", created_at, updated_at
		FROM permissions
		WHERE id = $1
	`
	p, err := scanPermission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "permission", ID: id.String()}
	}
	return p, err
}

func (r *permissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	query := `
		SELECT id, permission_name, page_url, "group", created_at, updated_at
		FROM permissions
		WHERE permission_name = $1
	`
	p, err := scanPermission(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "permission", ID: name}
	}
	return p, err
}

func (r *permissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	query := `
		SELECT id, permission_name, page_url, "group", created_at, updated_at
		FROM permissions
		ORDER BY "group", permission_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list permissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var permissions []*domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

func (r *permissionRepository) Update(ctx context.Context, p *domain.Permission) error {
	query := `
		UPDATE permissions
		SET permission_name = $2, page_url = $3, "group" = $4, updated_at = $5
		WHERE id = $1
	`
	p.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.PageURL, p.Group, p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to update permission", zap.String("id", p.ID.String()), zap.Error(err))
		return conflictOr(err, "permission name already exists")
	}
	return requireRow(result, "permission", p.ID.String())
}

func (r *permissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete permission", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	return requireRow(result, "permission", id.String())
}

// IsAssigned reports whether any role grants the permission
func (r *permissionRepository) IsAssigned(ctx context.Context, id uuid.UUID) (bool, error) {
	var assigned bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_permissions WHERE permission_id = $1)`, id,
	).Scan(&assigned)
	return assigned, err
}

func scanPermission(row rowScanner) (*domain.Permission, error) {
	var p domain.Permission
	if err := row.Scan(&p.ID, &p.Name, &p.PageURL, &p.Group, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireRow(result sql.Result, resource, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}
