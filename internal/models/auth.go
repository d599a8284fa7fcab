package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles issued by the auth service.
type UserRole string

const (
	RoleAdmin          UserRole = "ADMIN"
	RoleDepartmentHead UserRole = "DEPARTMENT_HEAD"
	RoleTeacher        UserRole = "TEACHER"
	RoleStudent        UserRole = "STUDENT"
)

// JWTClaims represents the access token payload.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	DepartmentID string   `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}

// Valid reports whether the role is one this service recognises.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDepartmentHead, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
