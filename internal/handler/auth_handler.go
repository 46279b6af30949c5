package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/jwtutil"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// AuthHandler serves registration, login and account endpoints.
type AuthHandler struct {
	db     *gorm.DB
	tokens *jwtutil.JWT
}

func NewAuthHandler(db *gorm.DB, tokens *jwtutil.JWT) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

type userResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	TenantID *string `json:"tenant_id,omitempty"`
	Role     string  `json:"role,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, TenantID: u.TenantID, Role: u.Role}
}

// Register creates a standalone account outside any tenant.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	if err := h.db.WithContext(c.Request().Context()).Model(&model.User{}).
		Where("email = ? AND tenant_id IS NULL", req.Email).Count(&count).Error; err != nil {
		log.Error("Failed to check existing user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	user := model.User{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
		Role:     model.TenantRoleMember,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := h.tokens.GenerateUserToken(user.ID, user.Email, user.Name, nil, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": toUserResponse(&user)})
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := h.db.WithContext(c.Request().Context()).
		Where("email = ?", req.Email).First(&user).Error; err != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	token, err := h.tokens.GenerateUserToken(user.ID, user.Email, user.Name, user.TenantID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in", zap.String("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": toUserResponse(&user)})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)

	var user model.User
	if err := h.db.WithContext(c.Request().Context()).
		Where("id = ?", middleware.UserID(c)).First(&user).Error; err != nil {
		log.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, toUserResponse(&user))
}

// DeleteAccount removes the authenticated user after a password check.
// Accounts still owning projects are rejected; the owner must delete or
// hand over those projects first.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	log := logger.FromContext(c)
	userID := middleware.UserID(c)

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	if err := h.db.WithContext(c.Request().Context()).
		Where("id = ?", userID).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	var owned int64
	if err := h.db.WithContext(c.Request().Context()).Model(&model.Project{}).
		Where("owner_id = ?", userID).Count(&owned).Error; err != nil {
		log.Error("Failed to count owned projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if owned > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "account still owns projects; delete or transfer them first"})
	}

	err := h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		log.Error("Failed to delete account", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	log.Info("Account deleted", zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}

// loadInvitation resolves a redeemable invitation by token.
func (h *AuthHandler) loadInvitation(c echo.Context, token string) (*model.TenantInvitation, *model.Tenant, error) {
	var inv model.TenantInvitation
	err := h.db.WithContext(c.Request().Context()).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&inv).Error
	if err != nil {
		return nil, nil, err
	}

	var tenant model.Tenant
	err = h.db.WithContext(c.Request().Context()).
		Where("id = ? AND status = ?", inv.TenantID, model.TenantStatusActive).
		First(&tenant).Error
	if err != nil {
		return nil, nil, err
	}
	return &inv, &tenant, nil
}

// GetInvitation shows what an invitation token grants. Unknown, used
// and expired tokens are indistinguishable to the caller.
func (h *AuthHandler) GetInvitation(c echo.Context) error {
	inv, tenant, err := h.loadInvitation(c, c.Param("token"))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.FromContext(c).Error("Failed to load invitation", zap.Error(err))
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired invitation"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tenantName": tenant.Name,
		"email":      inv.Email,
		"role":       inv.Role,
		"expiresAt":  inv.ExpiresAt,
	})
}

// RegisterByInvitation redeems an invitation: the user is created in
// the invitation's tenant and the token is spent, atomically.
func (h *AuthHandler) RegisterByInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var user model.User
	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		var inv model.TenantInvitation
		if err := tx.Where("token = ? AND used_at IS NULL AND expires_at > ?", req.Token, time.Now()).
			First(&inv).Error; err != nil {
			return err
		}
		var tenant model.Tenant
		if err := tx.Where("id = ? AND status = ?", inv.TenantID, model.TenantStatusActive).
			First(&tenant).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.User{}).
			Where("email = ? AND tenant_id = ?", inv.Email, inv.TenantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrRecordNotFound
		}

		role := model.TenantRoleMember
		if inv.Role == "admin" {
			role = model.TenantRoleAdmin
		}
		user = model.User{
			ID:       uuid.New().String(),
			TenantID: &inv.TenantID,
			Email:    inv.Email,
			Password: string(hashed),
			Name:     req.Name,
			Role:     role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&inv).Update("used_at", &now).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired invitation"})
		}
		log.Error("Failed to redeem invitation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := h.tokens.GenerateUserToken(user.ID, user.Email, user.Name, user.TenantID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Invitation redeemed",
		zap.String("user_id", user.ID),
		zap.Stringp("tenant_id", user.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": toUserResponse(&user)})
}
