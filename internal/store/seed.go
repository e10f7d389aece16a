package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/company"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/user"
	"github.com/stacksketch/backend/pkg/storage"
)

const seedPath = "seed.yaml"

// seedFile lets a deployment override the bootstrap company and users by
// placing a seed.yaml next to the snapshot.
type seedFile struct {
	Company struct {
		Name       string `yaml:"name"`
		OwnerEmail string `yaml:"owner_email"`
	} `yaml:"company"`
	Users []struct {
		Email string `yaml:"email"`
		Role  string `yaml:"role"`
	} `yaml:"users"`
}

func (sn *Snapshot) seedState(ctx context.Context) (*State, error) {
	data, err := sn.storage.Read(ctx, seedPath)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return defaultSeedState(), nil
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		slog.Warn("seed file is unparsable, using built-in bootstrap data", "error", err)
		return defaultSeedState(), nil
	}
	st, err := stateFromSeedFile(&sf)
	if err != nil {
		slog.Warn("seed file is invalid, using built-in bootstrap data", "error", err)
		return defaultSeedState(), nil
	}
	return st, nil
}

func stateFromSeedFile(sf *seedFile) (*State, error) {
	st := newState()
	now := time.Now().UTC()

	companyID := ulid.Make().String()
	ownerID := ""
	ids := make([]string, len(sf.Users))
	for i := range sf.Users {
		ids[i] = ulid.Make().String()
		if sf.Users[i].Email == sf.Company.OwnerEmail {
			ownerID = ids[i]
		}
	}
	if err := st.PutCompany(&company.Company{
		ID:        companyID,
		Name:      sf.Company.Name,
		OwnerID:   ownerID,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	for i, su := range sf.Users {
		role := user.Role(su.Role)
		u := &user.User{
			ID:        ids[i],
			Email:     su.Email,
			Role:      role,
			CreatedAt: now,
		}
		if role != user.RoleEducationUser {
			u.CompanyID = companyID
		}
		if err := st.PutUser(u); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// defaultSeedState builds the fixed demo dataset: one company, one user
// per role, one sample public codebase and one explicit read grant.
func defaultSeedState() *State {
	st := newState()
	now := time.Now().UTC()

	companyID := ulid.Make().String()
	employerID := ulid.Make().String()

	// PutCompany before PutUser: users referencing the company are
	// validated against it.
	must(st.PutCompany(&company.Company{
		ID:        companyID,
		Name:      "TechCorp Solutions",
		OwnerID:   employerID,
		CreatedAt: now,
	}))
	must(st.PutUser(&user.User{
		ID:        employerID,
		Email:     "enterprise_employer@demo.com",
		Role:      user.RoleEnterpriseEmployer,
		CompanyID: companyID,
		CreatedAt: now,
	}))
	must(st.PutUser(&user.User{
		ID:        ulid.Make().String(),
		Email:     "enterprise_employee@demo.com",
		Role:      user.RoleEnterpriseEmployee,
		CompanyID: companyID,
		CreatedAt: now,
	}))
	must(st.PutUser(&user.User{
		ID:        ulid.Make().String(),
		Email:     "education_user@demo.com",
		Role:      user.RoleEducationUser,
		CreatedAt: now,
	}))

	codebaseID := ulid.Make().String()
	must(st.PutCodebase(&codebase.Share{
		ID:          codebaseID,
		Name:        "Frontend React App",
		Description: "Sample analyzed repository shared with the whole company",
		OwnerEmail:  "enterprise_employer@demo.com",
		CompanyID:   companyID,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsPublic:    true,
		TechStack:   []string{"TypeScript", "React"},
		TotalFiles:  128,
		TotalSize:   524288,
	}))
	must(st.PutPermission(&permission.Grant{
		ID:         ulid.Make().String(),
		CodebaseID: codebaseID,
		UserEmail:  "enterprise_employee@demo.com",
		Permission: permission.Read,
		GrantedBy:  "enterprise_employer@demo.com",
		GrantedAt:  now,
	}))
	return st
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
