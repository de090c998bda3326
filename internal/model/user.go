package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin              = "admin"
	RoleBoss               = "boss"
	RoleSoftwareEngineer   = "software_engineer"
	RoleMechanicalEngineer = "mechanical_engineer"
	RoleElectricalEngineer = "electrical_engineer"
	RoleSales              = "sales"
	RoleFinance            = "finance"
	RoleProcurement        = "procurement"
	RoleCustomer           = "customer"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DepartmentID *int64 `json:"department_id"`
}

// Principal is the authenticated actor attached to every request.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// NormalizedRole trims and lower-cases the role for policy checks; role
// values in old tokens are not guaranteed to be canonical.
func (p Principal) NormalizedRole() string {
	return NormalizeRole(p.Role)
}

func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
