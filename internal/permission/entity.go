package permission

import "time"

// Level is the graded permission a user can hold on a shared codebase.
// The zero value None means no access.
type Level string

const (
	None  Level = ""
	Read  Level = "read"
	Write Level = "write"
	Admin Level = "admin"
)

func (l Level) rank() int {
	switch l {
	case Read:
		return 1
	case Write:
		return 2
	case Admin:
		return 3
	}
	return 0
}

// Valid reports whether l is a grantable level (None is not grantable).
func (l Level) Valid() bool {
	return l.rank() > 0
}

// AtLeast reports whether l grants at minimum the given level.
func (l Level) AtLeast(other Level) bool {
	return l.rank() >= other.rank()
}

// Max returns the higher of two levels.
func Max(a, b Level) Level {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Grant gives one user an explicit permission level on one codebase.
// Grants are append-only: a new grant never replaces an older one, and the
// decision engine takes the maximum over all effective grants.
type Grant struct {
	ID         string     `json:"id"`
	CodebaseID string     `json:"codebase_id"`
	UserEmail  string     `json:"user_email"`
	Permission Level      `json:"permission"`
	GrantedBy  string     `json:"granted_by"`
	GrantedAt  time.Time  `json:"granted_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// EffectiveAt reports whether the grant is in force at t.
func (g *Grant) EffectiveAt(t time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(t)
}

func (g *Grant) Clone() *Grant {
	if g == nil {
		return nil
	}
	cp := *g
	if g.ExpiresAt != nil {
		exp := *g.ExpiresAt
		cp.ExpiresAt = &exp
	}
	return &cp
}
