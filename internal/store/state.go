package store

import (
	"fmt"
	"sort"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/company"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/user"
	"github.com/stacksketch/backend/pkg/cerr"
)

// State holds the four entity maps. It exclusively owns every entity it
// contains: accessors copy on the way in and on the way out, so no caller
// ever holds a mutable alias into the store. Mutating methods enforce the
// referential invariants of the data model.
type State struct {
	users        map[string]*user.User
	usersByEmail map[string]string
	companies    map[string]*company.Company
	codebases    map[string]*codebase.Share
	permissions  map[string]*permission.Grant
}

func newState() *State {
	return &State{
		users:        map[string]*user.User{},
		usersByEmail: map[string]string{},
		companies:    map[string]*company.Company{},
		codebases:    map[string]*codebase.Share{},
		permissions:  map[string]*permission.Grant{},
	}
}

func (s *State) PutUser(u *user.User) error {
	if u.ID == "" || u.Email == "" {
		return cerr.NewError(cerr.InvalidArgument, "user id and email are required", nil)
	}
	if !u.Role.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid role %q", u.Role), nil)
	}
	if u.CompanyID != "" {
		if _, ok := s.companies[u.CompanyID]; !ok {
			return cerr.NewError(cerr.NotFound, "company not found", nil)
		}
	}
	if existingID, ok := s.usersByEmail[u.Email]; ok && existingID != u.ID {
		return cerr.NewError(cerr.AlreadyExists, "email already registered", nil)
	}
	if prev, ok := s.users[u.ID]; ok && prev.Email != u.Email {
		delete(s.usersByEmail, prev.Email)
	}
	s.users[u.ID] = u.Clone()
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *State) User(id string) (*user.User, bool) {
	u, ok := s.users[id]
	return u.Clone(), ok
}

func (s *State) UserByEmail(email string) (*user.User, bool) {
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, false
	}
	return s.users[id].Clone(), true
}

func (s *State) UsersInCompany(companyID string) []*user.User {
	var out []*user.User
	for _, u := range s.users {
		if u.CompanyID == companyID {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) PutCompany(c *company.Company) error {
	if c.ID == "" || c.Name == "" {
		return cerr.NewError(cerr.InvalidArgument, "company id and name are required", nil)
	}
	s.companies[c.ID] = c.Clone()
	return nil
}

func (s *State) Company(id string) (*company.Company, bool) {
	c, ok := s.companies[id]
	return c.Clone(), ok
}

func (s *State) PutCodebase(cb *codebase.Share) error {
	if cb.ID == "" || cb.Name == "" {
		return cerr.NewError(cerr.InvalidArgument, "codebase id and name are required", nil)
	}
	if cb.CompanyID != "" {
		if _, ok := s.companies[cb.CompanyID]; !ok {
			return cerr.NewError(cerr.NotFound, "company not found", nil)
		}
	}
	s.codebases[cb.ID] = cb.Clone()
	return nil
}

func (s *State) Codebase(id string) (*codebase.Share, bool) {
	cb, ok := s.codebases[id]
	return cb.Clone(), ok
}

// Codebases returns all shares ordered by id. Ids are ULIDs, so this is
// creation order and stable across calls.
func (s *State) Codebases() []*codebase.Share {
	out := make([]*codebase.Share, 0, len(s.codebases))
	for _, cb := range s.codebases {
		out = append(out, cb.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) PutPermission(g *permission.Grant) error {
	if g.ID == "" {
		return cerr.NewError(cerr.InvalidArgument, "permission id is required", nil)
	}
	if !g.Permission.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid permission level %q", g.Permission), nil)
	}
	if _, ok := s.codebases[g.CodebaseID]; !ok {
		return cerr.NewError(cerr.NotFound, "codebase not found", nil)
	}
	if _, ok := s.usersByEmail[g.UserEmail]; !ok {
		return cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(g.GrantedAt) {
		return cerr.NewError(cerr.InvalidArgument, "expiry must be after grant time", nil)
	}
	s.permissions[g.ID] = g.Clone()
	return nil
}

func (s *State) Permission(id string) (*permission.Grant, bool) {
	g, ok := s.permissions[id]
	return g.Clone(), ok
}

func (s *State) PermissionsForCodebase(codebaseID string) []*permission.Grant {
	var out []*permission.Grant
	for _, g := range s.permissions {
		if g.CodebaseID == codebaseID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
