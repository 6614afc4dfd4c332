package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, name, email, password_hash, mobile, whatsapp_number, role_id,
			store_name, business_name, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Mobile,
		user.WhatsappNumber,
		user.RoleID,
		user.StoreName,
		user.BusinessName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return conflictOr(err, "email already exists")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "user", ID: email}
	}
	return user, err
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		r.logger.Error("Failed to count users", zap.Error(err))
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, mobile = $5, whatsapp_number = $6,
			role_id = $7, store_name = $8, business_name = $9, updated_at = $10
		WHERE id = $1
	`

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Mobile,
		user.WhatsappNumber,
		user.RoleID,
		user.StoreName,
		user.BusinessName,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.String("id", user.ID.String()), zap.Error(err))
		return conflictOr(err, "email already exists")
	}
	return requireRow(result, "user", user.ID.String())
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	return requireRow(result, "user", id.String())
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var storeName, businessName sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Mobile,
		&user.WhatsappNumber,
		&user.RoleID,
		&storeName,
		&businessName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if storeName.Valid {
		user.StoreName = &storeName.String
	}
	if businessName.Valid {
		user.BusinessName = &businessName.String
	}
	return &user, nil
}
