package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Order:           NewOrderRepository(db, logger),
		RemovedLineItem: NewRemovedLineItemRepository(db, logger),
		OrderTimeline:   NewOrderTimelineRepository(db, logger),
		Permission:      NewPermissionRepository(db, logger),
		Role:            NewRoleRepository(db, logger),
		User:            NewUserRepository(db, logger),
	}
}
