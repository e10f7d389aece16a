package user

import (
	"time"

	"github.com/stacksketch/backend/pkg/jsonx"
)

// Role classifies how a user participates in the platform.
type Role string

const (
	RoleEnterpriseEmployer Role = "enterprise_employer"
	RoleEnterpriseEmployee Role = "enterprise_employee"
	RoleEducationUser      Role = "education_user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEnterpriseEmployer, RoleEnterpriseEmployee, RoleEducationUser:
		return true
	}
	return false
}

type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	CompanyID string         `json:"company_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Settings  map[string]any `json:"settings,omitempty"`
}

// Clone returns an independent copy; the settings document is deep-copied.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Settings = jsonx.CloneMap(u.Settings)
	return &cp
}
