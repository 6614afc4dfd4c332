package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type accessService struct {
	repos       *repository.Repositories
	adminUserID string
	logger      *zap.Logger
}

// NewAccessService creates the RBAC service. adminUserID names the account that can never be deleted.
func NewAccessService(repos *repository.Repositories, adminUserID string, logger *zap.Logger) *accessService {
	return &accessService{
		repos:       repos,
		adminUserID: strings.TrimSpace(adminUserID),
		logger:      logger,
	}
}

func (s *accessService) CreatePermission(ctx context.Context, req PermissionRequest) (*domain.Permission, error) {
	permission := &domain.Permission{
		Name:    strings.TrimSpace(req.Name),
		PageURL: req.PageURL,
		Group:   req.Group,
	}
	if permission.Name == "" {
		return nil, &errors.ErrValidation{Message: "permission_name is required"}
	}
	if err := s.repos.Permission.Create(ctx, permission); err != nil {
		return nil, err
	}
	s.logger.Info("Created permission", zap.String("permission", permission.Name))
	return permission, nil
}

func (s *accessService) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	return s.repos.Permission.List(ctx)
}

func (s *accessService) GetPermission(ctx context.Context, id uuid.UUID) (*domain.Permission, error) {
	return s.repos.Permission.GetByID(ctx, id)
}

func (s *accessService) UpdatePermission(ctx context.Context, id uuid.UUID, req PermissionRequest) (*domain.Permission, error) {
	permission, err := s.repos.Permission.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name != "" && name != permission.Name {
		other, err := s.repos.Permission.GetByName(ctx, name)
		if err == nil && other.ID != id {
			return nil, &errors.ErrConflict{Message: "permission name already in use: " + name}
		}
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		permission.Name = name
	}
	permission.PageURL = req.PageURL
	permission.Group = req.Group

	if err := s.repos.Permission.Update(ctx, permission); err != nil {
		return nil, err
	}
	return permission, nil
}

func (s *accessService) DeletePermission(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repos.Permission.GetByID(ctx, id); err != nil {
		return err
	}
	assigned, err := s.repos.Permission.IsAssigned(ctx, id)
	if err != nil {
		return err
	}
	if assigned {
		return &errors.ErrConflict{Message: "permission is assigned to a role"}
	}
	return s.repos.Permission.Delete(ctx, id)
}

func (s *accessService) CreateRole(ctx context.Context, req RoleRequest) (*domain.Role, error) {
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}
	role := &domain.Role{
		Name:          strings.TrimSpace(req.Name),
		PermissionIDs: req.PermissionIDs,
	}
	if role.Name == "" {
		return nil, &errors.ErrValidation{Message: "role_name is required"}
	}
	if err := s.repos.Role.Create(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info("Created role", zap.String("role", role.Name), zap.Int("permissions", len(role.PermissionIDs)))
	return role, nil
}

func (s *accessService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.repos.Role.List(ctx)
}

func (s *accessService) GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return s.repos.Role.GetByID(ctx, id)
}

func (s *accessService) UpdateRole(ctx context.Context, id uuid.UUID, req RoleRequest) (*domain.Role, error) {
	role, err := s.repos.Role.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" && name != role.Name {
		if domain.IsProtectedRole(role.Name) {
			return nil, &errors.ErrForbidden{Message: fmt.Sprintf("role %q cannot be renamed", role.Name)}
		}
		role.Name = name
	}
	role.PermissionIDs = req.PermissionIDs

	if err := s.repos.Role.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole refuses the built-in roles and roles still held by users
func (s *accessService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.repos.Role.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if domain.IsProtectedRole(role.Name) {
		return &errors.ErrForbidden{Message: fmt.Sprintf("role %q cannot be deleted", role.Name)}
	}
	inUse, err := s.repos.Role.HasUsers(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return &errors.ErrConflict{Message: "role is assigned to users"}
	}
	return s.repos.Role.Delete(ctx, id)
}

func (s *accessService) checkPermissions(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.repos.Permission.GetByID(ctx, id); err != nil {
			if errors.IsNotFound(err) {
				return &errors.ErrValidation{
					Message: "unknown permission: " + id.String(),
					Fields:  map[string]string{"permissions": "unknown"},
				}
			}
			return err
		}
	}
	return nil
}

func (s *accessService) checkRole(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repos.Role.GetByID(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return &errors.ErrValidation{Message: "unknown role", Fields: map[string]string{"role": "unknown"}}
		}
		return err
	}
	return nil
}

func (s *accessService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if err := s.checkRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		PasswordHash:   string(hash),
		Mobile:         req.Mobile,
		WhatsappNumber: req.WhatsappNumber,
		RoleID:         req.RoleID,
		StoreName:      req.StoreName,
		BusinessName:   req.BusinessName,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Created user", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *accessService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repos.User.GetByID(ctx, id)
}

func (s *accessService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.repos.User.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return &UserPage{Total: total, Page: page, Limit: limit, Users: users}, nil
}

// UpdateUser applies the non-empty fields of req. A new password is re-hashed.
func (s *accessService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		other, err := s.repos.User.GetByEmail(ctx, email)
		if err == nil && other.ID != id {
			return nil, &errors.ErrConflict{Message: "email already in use"}
		}
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		user.Email = email
	}
	if req.RoleID != nil && *req.RoleID != user.RoleID {
		if err := s.checkRole(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = *req.RoleID
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Mobile != "" {
		user.Mobile = req.Mobile
	}
	if req.WhatsappNumber != "" {
		user.WhatsappNumber = req.WhatsappNumber
	}
	if req.StoreName != nil {
		user.StoreName = req.StoreName
	}
	if req.BusinessName != nil {
		user.BusinessName = req.BusinessName
	}

	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Updated user", zap.String("user_id", user.ID.String()))
	return user, nil
}

// DeleteUser refuses the configured admin account
func (s *accessService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if s.adminUserID != "" && strings.EqualFold(id.String(), s.adminUserID) {
		return &errors.ErrForbidden{Message: "the admin user cannot be deleted"}
	}
	if _, err := s.repos.User.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repos.User.Delete(ctx, id)
}

// GetProfile returns the caller's account together with its role
func (s *accessService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user, Permissions: []string{}}

	role, err := s.repos.Role.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.IsNotFound(err) {
			return profile, nil
		}
		return nil, err
	}
	profile.Role = role
	names, err := s.repos.Role.PermissionNames(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	if names != nil {
		profile.Permissions = names
	}
	return profile, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *accessService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return &errors.ErrValidation{
			Message: "current password is incorrect",
			Fields:  map[string]string{"current_password": "incorrect"},
		}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.NewPassword)) == nil {
		return &errors.ErrValidation{
			Message: "new password is the same as the current one",
			Fields:  map[string]string{"new_password": "unchanged"},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.repos.User.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Changed password", zap.String("user_id", user.ID.String()))
	return nil
}

// Authorize loads the user behind a token and checks its role grants permission.
// The admin role passes every check.
func (s *accessService) Authorize(ctx context.Context, userID uuid.UUID, permission string) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, &errors.ErrUnauthorized{Message: "unknown user"}
		}
		return nil, err
	}
	role, err := s.repos.Role.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, &errors.ErrForbidden{Message: "user has no role"}
		}
		return nil, err
	}
	if strings.EqualFold(role.Name, domain.RoleAdmin) || permission == "" {
		return user, nil
	}

	names, err := s.repos.Role.PermissionNames(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if strings.EqualFold(name, permission) {
			return user, nil
		}
	}
	s.logger.Debug("Permission denied",
		zap.String("user_id", userID.String()),
		zap.String("role", role.Name),
		zap.String("permission", permission),
	)
	return nil, &errors.ErrForbidden{Message: "missing permission: " + permission}
}
