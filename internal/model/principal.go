package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleCitizen UserRole = "CITIZEN"
	UserRoleDriver  UserRole = "DRIVER"
	UserRoleAdmin   UserRole = "ADMIN"
)

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsCitizen() bool {
	return p.Role == UserRoleCitizen
}

func (p Principal) IsDriver() bool {
	return p.Role == UserRoleDriver
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
