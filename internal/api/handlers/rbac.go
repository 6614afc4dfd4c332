package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/api/middleware"
	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// HandleCreatePermission handles POST /api/v1/permissions
func HandleCreatePermission(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PermissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		permission, err := access.CreatePermission(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusCreated, permission)
	}
}

// HandleListPermissions handles GET /api/v1/permissions
func HandleListPermissions(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		permissions, err := access.ListPermissions(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, permissions)
	}
}

// HandleGetPermission handles GET /api/v1/permissions/:id
func HandleGetPermission(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		permission, err := access.GetPermission(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, permission)
	}
}

// HandleUpdatePermission handles PUT /api/v1/permissions/:id
func HandleUpdatePermission(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var req service.PermissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		permission, err := access.UpdatePermission(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, permission)
	}
}

// HandleDeletePermission handles DELETE /api/v1/permissions/:id
func HandleDeletePermission(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		if err := access.DeletePermission(c.Request.Context(), id); err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"id": id})
	}
}

// HandleCreateRole handles POST /api/v1/roles
func HandleCreateRole(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		role, err := access.CreateRole(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusCreated, role)
	}
}

// HandleListRoles handles GET /api/v1/roles
func HandleListRoles(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := access.ListRoles(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, roles)
	}
}

// HandleGetRole handles GET /api/v1/roles/:id
func HandleGetRole(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		role, err := access.GetRole(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, role)
	}
}

// HandleUpdateRole handles PUT /api/v1/roles/:id
func HandleUpdateRole(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var req service.RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		role, err := access.UpdateRole(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, role)
	}
}

// HandleDeleteRole handles DELETE /api/v1/roles/:id
func HandleDeleteRole(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		if err := access.DeleteRole(c.Request.Context(), id); err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"id": id})
	}
}

// HandleCreateUser handles POST /api/v1/users
func HandleCreateUser(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		user, err := access.CreateUser(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusCreated, user)
	}
}

// HandleListUsers handles GET /api/v1/users
func HandleListUsers(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		users, err := access.ListUsers(c.Request.Context(), page, limit)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, users)
	}
}

// HandleGetUser handles GET /api/v1/users/:id
func HandleGetUser(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		user, err := access.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, user)
	}
}

// HandleUpdateUser handles PUT /api/v1/users/:id
func HandleUpdateUser(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var req service.UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		user, err := access.UpdateUser(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, user)
	}
}

// HandleDeleteUser handles DELETE /api/v1/users/:id
func HandleDeleteUser(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		if err := access.DeleteUser(c.Request.Context(), id); err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"id": id})
	}
}

// HandleGetProfile handles GET /api/v1/profile
func HandleGetProfile(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			respondError(c, &errors.ErrUnauthorized{Message: "unauthenticated"}, logger)
			return
		}
		profile, err := access.GetProfile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, profile)
	}
}

// HandleChangePassword handles PUT /api/v1/profile/changepassword
func HandleChangePassword(access service.AccessControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			respondError(c, &errors.ErrUnauthorized{Message: "unauthenticated"}, logger)
			return
		}
		var req service.ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		if err := access.ChangePassword(c.Request.Context(), userID, req); err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"message": "password updated"})
	}
}
