package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"kpi-dashboard/pkg/config"
)

// UserClaims represents the JWT claims for a tenant or independent user session
type UserClaims struct {
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	TenantID   *string `json:"tenant_id,omitempty"`
	TenantRole string  `json:"tenant_role,omitempty"`
	jwt.RegisteredClaims
}

// SuperAdminClaims represents the JWT claims for a platform super-admin.
// Signed with a separate secret; IsSuperAdmin must be checked in addition
// to signature validity so the two principal types are never interchangeable.
type SuperAdminClaims struct {
	AdminID      string `json:"admin_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	jwt.RegisteredClaims
}

// JWT issues and validates session tokens for both principal types
type JWT struct {
	user       config.JWTConfig
	superAdmin config.SuperAdminConfig
}

// New creates a JWT utility with the given configuration
func New(cfg *config.Config) *JWT {
	return &JWT{
		user:       cfg.JWT,
		superAdmin: cfg.SuperAdmin,
	}
}

// GenerateUserToken creates a session token carrying user and tenant scope
func (j *JWT) GenerateUserToken(userID, email, name string, tenantID *string, tenantRole string) (string, error) {
	claims := UserClaims{
		UserID:     userID,
		Email:      email,
		Name:       name,
		TenantID:   tenantID,
		TenantRole: tenantRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.user.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.user.SigningKey))
}

// ValidateUserToken validates and parses a user session token
func (j *JWT) ValidateUserToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.user.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GenerateSuperAdminToken creates a platform admin token with the admin secret
func (j *JWT) GenerateSuperAdminToken(adminID, email, name string) (string, error) {
	claims := SuperAdminClaims{
		AdminID:      adminID,
		Email:        email,
		Name:         name,
		IsSuperAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.superAdmin.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.superAdmin.SigningKey))
}

// ValidateSuperAdminToken validates a platform admin token. A structurally
// valid token without the super-admin flag is rejected.
func (j *JWT) ValidateSuperAdminToken(tokenString string) (*SuperAdminClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SuperAdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.superAdmin.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SuperAdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.IsSuperAdmin {
		return nil, errors.New("not a super-admin token")
	}

	return claims, nil
}
