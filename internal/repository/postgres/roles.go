package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type roleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *sql.DB, logger *zap.Logger) *roleRepository {
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

const roleSelect = `
		SELECT r.id, r.role_name, r.created_at, r.updated_at,
			COALESCE(array_agg(rp.permission_id::text) FILTER (WHERE rp.permission_id IS NOT NULL), '{}')
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
`

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	now := time.Now()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.CreatedAt = now
	role.UpdatedAt = now

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO roles (id, role_name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			role.ID, role.Name, role.CreatedAt, role.UpdatedAt,
		)
		if err != nil {
			return conflictOr(err, "role name already exists")
		}
		return insertRolePermissions(ctx, tx, role)
	})
	if err != nil {
		r.logger.Error("Failed to create role", zap.String("name", role.Name), zap.Error(err))
	}
	return err
}

func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	role, err := scanRole(r.db.QueryRowContext(ctx, roleSelect+` WHERE r.id = $1 GROUP BY r.id`, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "role", ID: id.String()}
	}
	return role, err
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := scanRole(r.db.QueryRowContext(ctx, roleSelect+` WHERE r.role_name = $1 GROUP BY r.id`, name))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "role", ID: name}
	}
	return role, err
}

func (r *roleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, roleSelect+` GROUP BY r.id ORDER BY r.role_name`)
	if err != nil {
		r.logger.Error("Failed to list roles", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Update renames the role and replaces its permission set
func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	role.UpdatedAt = time.Now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE roles SET role_name = $2, updated_at = $3 WHERE id = $1`,
			role.ID, role.Name, role.UpdatedAt,
		)
		if err != nil {
			return conflictOr(err, "role name already exists")
		}
		if err := requireRow(result, "role", role.ID.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
			return err
		}
		return insertRolePermissions(ctx, tx, role)
	})
	if err != nil {
		r.logger.Error("Failed to update role", zap.String("id", role.ID.String()), zap.Error(err))
	}
	return err
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(result, "role", id.String())
	})
}

// HasUsers reports whether any user is assigned the role
func (r *roleRepository) HasUsers(ctx context.Context, id uuid.UUID) (bool, error) {
	var assigned bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role_id = $1)`, id).Scan(&assigned)
	return assigned, err
}

// PermissionNames returns the names of the permissions the role grants
func (r *roleRepository) PermissionNames(ctx context.Context, id uuid.UUID) ([]string, error) {
	query := `
		SELECT p.permission_name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func insertRolePermissions(ctx context.Context, tx *sql.Tx, role *domain.Role) error {
	for _, pid := range role.PermissionIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			role.ID, pid,
		)
		if err != nil {
			return fmt.Errorf("assign permission %s: %w", pid, err)
		}
	}
	return nil
}

func scanRole(row rowScanner) (*domain.Role, error) {
	var role domain.Role
	var permissionIDs []string
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt, pq.Array(&permissionIDs)); err != nil {
		return nil, err
	}
	role.PermissionIDs = make([]uuid.UUID, 0, len(permissionIDs))
	for _, raw := range permissionIDs {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid permission id %q: %w", raw, err)
		}
		role.PermissionIDs = append(role.PermissionIDs, pid)
	}
	return &role, nil
}
