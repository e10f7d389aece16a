package sharing

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stacksketch/backend/internal/access"
	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/store"
	"github.com/stacksketch/backend/internal/user"
	"github.com/stacksketch/backend/pkg/cerr"
)

// Service implements the sharing use cases. Every mutation checks the
// access rules, applies its change and persists the snapshot inside a
// single store.Update critical section.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type ShareCodebaseInput struct {
	Name        string
	Description string
	OwnerEmail  string
	CompanyID   string
	IsPublic    bool
	Data        map[string]any
}

// ShareCodebase creates a new share. When the owner is an employee, every
// employer in the share's company is automatically granted Admin; when the
// share is public, every other employee in the company is granted Read.
// The fan-out happens only here, not on later saves.
func (s *Service) ShareCodebase(ctx context.Context, in ShareCodebaseInput) (*codebase.Share, error) {
	if in.Name == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "name is required", nil)
	}
	doc, err := codebase.ParseDocument(in.Data)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid codebase data", err)
	}

	var created *codebase.Share
	err = s.store.Update(ctx, func(st *store.State) error {
		owner, ok := st.UserByEmail(in.OwnerEmail)
		if !ok {
			return cerr.NewError(cerr.NotFound, "owner not found", nil)
		}
		if in.CompanyID != "" {
			if _, ok := st.Company(in.CompanyID); !ok {
				return cerr.NewError(cerr.NotFound, "company not found", nil)
			}
		}

		now := time.Now().UTC()
		cb := &codebase.Share{
			ID:          ulid.Make().String(),
			Name:        in.Name,
			Description: in.Description,
			OwnerEmail:  owner.Email,
			CompanyID:   in.CompanyID,
			CreatedAt:   now,
			UpdatedAt:   now,
			IsPublic:    in.IsPublic,
			Data:        in.Data,
		}
		if doc != nil {
			cb.TechStack = doc.TechStack
			cb.TotalFiles = doc.TotalFiles
			cb.TotalSize = doc.TotalSize
		}
		if err := st.PutCodebase(cb); err != nil {
			return err
		}

		if cb.CompanyID != "" {
			for _, member := range st.UsersInCompany(cb.CompanyID) {
				if member.Email == owner.Email {
					continue
				}
				var level permission.Level
				switch {
				case owner.Role == user.RoleEnterpriseEmployee && member.Role == user.RoleEnterpriseEmployer:
					level = permission.Admin
				case cb.IsPublic && member.Role == user.RoleEnterpriseEmployee:
					level = permission.Read
				default:
					continue
				}
				if err := st.PutPermission(&permission.Grant{
					ID:         ulid.Make().String(),
					CodebaseID: cb.ID,
					UserEmail:  member.Email,
					Permission: level,
					GrantedBy:  owner.Email,
					GrantedAt:  now,
				}); err != nil {
					return err
				}
			}
		}

		created = cb.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type GrantPermissionInput struct {
	CodebaseID   string
	GrantorEmail string
	GranteeEmail string
	Permission   permission.Level
	ExpiresAt    *time.Time
}

// GrantPermission records a new explicit grant. Grants are not
// deduplicated: the decision engine takes the maximum over all effective
// grants, so a later lower grant cannot downgrade an earlier higher one.
func (s *Service) GrantPermission(ctx context.Context, in GrantPermissionInput) (*permission.Grant, error) {
	if !in.Permission.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid permission level", nil)
	}

	var created *permission.Grant
	err := s.store.Update(ctx, func(st *store.State) error {
		cb, ok := st.Codebase(in.CodebaseID)
		if !ok {
			return cerr.NewError(cerr.NotFound, "codebase not found", nil)
		}
		grantor, ok := st.UserByEmail(in.GrantorEmail)
		if !ok {
			return cerr.NewError(cerr.NotFound, "grantor not found", nil)
		}
		if _, ok := st.UserByEmail(in.GranteeEmail); !ok {
			return cerr.NewError(cerr.NotFound, "grantee not found", nil)
		}
		isOwner := cb.OwnerEmail == grantor.Email
		isEmployer := grantor.Role == user.RoleEnterpriseEmployer &&
			grantor.CompanyID != "" && grantor.CompanyID == cb.CompanyID
		if !isOwner && !isEmployer {
			return cerr.NewError(cerr.PermissionDenied, "not allowed to grant permissions on this codebase", nil)
		}

		now := time.Now().UTC()
		if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
			return cerr.NewError(cerr.InvalidArgument, "expiry must be in the future", nil)
		}
		g := &permission.Grant{
			ID:         ulid.Make().String(),
			CodebaseID: in.CodebaseID,
			UserEmail:  in.GranteeEmail,
			Permission: in.Permission,
			GrantedBy:  grantor.Email,
			GrantedAt:  now,
			ExpiresAt:  in.ExpiresAt,
		}
		if err := st.PutPermission(g); err != nil {
			return err
		}
		created = g.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type SaveCodebaseInput struct {
	Name        *string
	Description *string
	OwnerEmail  *string
	CompanyID   *string
	IsPublic    *bool
	Data        map[string]any
}

// SaveCodebaseData overwrites the share's fields and bumps updated_at.
// It also demotes every existing grant on the codebase to Read and
// re-attributes granted_by to the current owner. The demotion mirrors the
// historical save behavior and is intentionally kept.
func (s *Service) SaveCodebaseData(ctx context.Context, codebaseID, actorEmail string, in SaveCodebaseInput) (*codebase.Share, error) {
	doc, err := codebase.ParseDocument(in.Data)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid codebase data", err)
	}

	var updated *codebase.Share
	err = s.store.Update(ctx, func(st *store.State) error {
		cb, ok := st.Codebase(codebaseID)
		if !ok {
			return cerr.NewError(cerr.NotFound, "codebase not found", nil)
		}
		if !access.Decide(st, actorEmail, codebaseID).AtLeast(permission.Write) {
			return cerr.NewError(cerr.PermissionDenied, "write access required", nil)
		}

		if in.Name != nil {
			cb.Name = *in.Name
		}
		if in.Description != nil {
			cb.Description = *in.Description
		}
		if in.OwnerEmail != nil {
			if _, ok := st.UserByEmail(*in.OwnerEmail); !ok {
				return cerr.NewError(cerr.NotFound, "owner not found", nil)
			}
			cb.OwnerEmail = *in.OwnerEmail
		}
		if in.CompanyID != nil {
			cb.CompanyID = *in.CompanyID
		}
		if in.IsPublic != nil {
			cb.IsPublic = *in.IsPublic
		}
		if in.Data != nil {
			cb.Data = in.Data
			cb.TechStack = nil
			cb.TotalFiles = 0
			cb.TotalSize = 0
			if doc != nil {
				cb.TechStack = doc.TechStack
				cb.TotalFiles = doc.TotalFiles
				cb.TotalSize = doc.TotalSize
			}
		}
		cb.UpdatedAt = time.Now().UTC()
		if err := st.PutCodebase(cb); err != nil {
			return err
		}

		for _, g := range st.PermissionsForCodebase(codebaseID) {
			g.Permission = permission.Read
			g.GrantedBy = cb.OwnerEmail
			if err := st.PutPermission(g); err != nil {
				return err
			}
		}

		updated = cb.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetCodebase returns the share's metadata; the codebase document itself
// is served by GetCodebaseData.
func (s *Service) GetCodebase(ctx context.Context, codebaseID, actorEmail string) (*codebase.Share, error) {
	var out *codebase.Share
	err := s.store.View(func(st *store.State) error {
		cb, ok := st.Codebase(codebaseID)
		if !ok {
			return cerr.NewError(cerr.NotFound, "codebase not found", nil)
		}
		if !access.CanAccess(st, actorEmail, codebaseID) {
			return cerr.NewError(cerr.PermissionDenied, "access denied", nil)
		}
		cb.Data = nil
		out = cb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCodebaseData returns the full codebase document.
func (s *Service) GetCodebaseData(ctx context.Context, codebaseID, actorEmail string) (map[string]any, error) {
	var out map[string]any
	err := s.store.View(func(st *store.State) error {
		cb, ok := st.Codebase(codebaseID)
		if !ok {
			return cerr.NewError(cerr.NotFound, "codebase not found", nil)
		}
		if !access.CanAccess(st, actorEmail, codebaseID) {
			return cerr.NewError(cerr.PermissionDenied, "access denied", nil)
		}
		out = cb.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetPermissions(ctx context.Context, codebaseID, actorEmail string) ([]*permission.Grant, error) {
	var out []*permission.Grant
	err := s.store.View(func(st *store.State) error {
		if _, ok := st.Codebase(codebaseID); !ok {
			return cerr.NewError(cerr.NotFound, "codebase not found", nil)
		}
		if !access.CanAccess(st, actorEmail, codebaseID) {
			return cerr.NewError(cerr.PermissionDenied, "access denied", nil)
		}
		out = st.PermissionsForCodebase(codebaseID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMyCodebases returns every share the user can see, in creation
// order, without the codebase documents.
func (s *Service) ListMyCodebases(ctx context.Context, userEmail string) ([]*codebase.Share, error) {
	var out []*codebase.Share
	err := s.store.View(func(st *store.State) error {
		for _, cb := range access.ListAccessible(st, userEmail) {
			cb.Data = nil
			out = append(out, cb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
