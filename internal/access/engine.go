// Package access answers "which permission level does a user hold on a
// codebase". Decisions are pure functions over the store state; callers
// invoke them inside a store.View or store.Update closure.
package access

import (
	"time"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/store"
	"github.com/stacksketch/backend/internal/user"
)

// Decide returns the maximum permission level email currently holds on
// codebaseID: Admin for the owner, Admin for an employer of the owning
// company, the maximum over all effective explicit grants, and at least
// Read when the codebase is public and the user belongs to the same
// company. None means access denied.
func Decide(st *store.State, email, codebaseID string) permission.Level {
	return DecideAt(st, email, codebaseID, time.Now())
}

// DecideAt is Decide evaluated at an explicit instant, which determines
// grant expiry.
func DecideAt(st *store.State, email, codebaseID string, at time.Time) permission.Level {
	cb, ok := st.Codebase(codebaseID)
	if !ok {
		return permission.None
	}
	if cb.OwnerEmail == email {
		return permission.Admin
	}

	level := permission.None
	if u, ok := st.UserByEmail(email); ok && u.CompanyID != "" && u.CompanyID == cb.CompanyID {
		if u.Role == user.RoleEnterpriseEmployer {
			return permission.Admin
		}
		if cb.IsPublic {
			level = permission.Read
		}
	}
	for _, g := range st.PermissionsForCodebase(codebaseID) {
		if g.UserEmail != email || !g.EffectiveAt(at) {
			continue
		}
		level = permission.Max(level, g.Permission)
	}
	return level
}

// CanAccess reports whether email holds any level on codebaseID.
func CanAccess(st *store.State, email, codebaseID string) bool {
	return Decide(st, email, codebaseID) != permission.None
}

// ListAccessible returns every share email can see, in creation order.
func ListAccessible(st *store.State, email string) []*codebase.Share {
	var out []*codebase.Share
	for _, cb := range st.Codebases() {
		if Decide(st, email, cb.ID) != permission.None {
			out = append(out, cb)
		}
	}
	return out
}
