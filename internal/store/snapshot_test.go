package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/user"
	"github.com/stacksketch/backend/pkg/storage"
)

func newLocalSnapshot(t *testing.T, dir string) *Snapshot {
	t.Helper()
	st, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewSnapshot(st)
}

func TestLoadSeedsWhenSnapshotMissing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sn := newLocalSnapshot(t, dir)

	st, err := sn.Load(ctx)
	require.NoError(t, err)

	// Bootstrap dataset: one company, three users, one public sample
	// share with a read grant to the employee.
	assert.Len(t, st.users, 3)
	assert.Len(t, st.companies, 1)
	assert.Len(t, st.codebases, 1)
	assert.Len(t, st.permissions, 1)

	employer, ok := st.UserByEmail("enterprise_employer@demo.com")
	require.True(t, ok)
	assert.Equal(t, user.RoleEnterpriseEmployer, employer.Role)
	assert.NotEmpty(t, employer.CompanyID)

	edu, ok := st.UserByEmail("education_user@demo.com")
	require.True(t, ok)
	assert.Empty(t, edu.CompanyID)

	// Seeding persists immediately so the next start finds a snapshot.
	_, err = os.Stat(filepath.Join(dir, "snapshot.json"))
	require.NoError(t, err)
}

func TestLoadReseedsOnCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot.json"), []byte("{not json"), 0o644))

	st, err := newLocalSnapshot(t, dir).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.users, 3)

	data, err := os.ReadFile(filepath.Join(dir, "snapshot.json"))
	require.NoError(t, err)
	assert.NotEqual(t, "{not json", string(data))
}

func TestLoadSkipsNullEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := `{
  "codebases": {"cb_null": null},
  "permissions": {"g_null": null},
  "companies": {"comp_null": null, "comp_1": {"id": "comp_1", "name": "TechCorp"}},
  "users": {"u_null": null, "u_1": {"id": "u_1", "email": "mike@techcorp.com", "role": "enterprise_employer", "company_id": "comp_1"}}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot.json"), []byte(doc), 0o644))

	st, err := newLocalSnapshot(t, dir).Load(ctx)
	require.NoError(t, err)

	assert.Empty(t, st.codebases)
	assert.Empty(t, st.permissions)
	assert.Len(t, st.companies, 1)
	require.Len(t, st.users, 1)
	u, ok := st.UserByEmail("mike@techcorp.com")
	require.True(t, ok)
	assert.Equal(t, "u_1", u.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	sn := newLocalSnapshot(t, t.TempDir())

	orig, err := sn.Load(ctx)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(time.Hour)
	require.NoError(t, orig.PutCodebase(&codebase.Share{
		ID:         "cb_extra",
		Name:       "API Gateway",
		OwnerEmail: "enterprise_employee@demo.com",
		CreatedAt:  now,
		UpdatedAt:  now,
		TechStack:  []string{"Go"},
		Data: map[string]any{
			"tech_stack":  []any{"Go"},
			"total_files": float64(7),
		},
	}))
	require.NoError(t, orig.PutPermission(&permission.Grant{
		ID:         "g_extra",
		CodebaseID: "cb_extra",
		UserEmail:  "education_user@demo.com",
		Permission: permission.Write,
		GrantedBy:  "enterprise_employee@demo.com",
		GrantedAt:  now,
		ExpiresAt:  &exp,
	}))
	require.NoError(t, sn.Save(ctx, orig))

	loaded, err := sn.Load(ctx)
	require.NoError(t, err)

	cb, ok := loaded.Codebase("cb_extra")
	require.True(t, ok)
	assert.Equal(t, "API Gateway", cb.Name)
	assert.Equal(t, []string{"Go"}, cb.TechStack)
	assert.Equal(t, float64(7), cb.Data["total_files"])
	assert.True(t, cb.CreatedAt.Equal(now))

	g, ok := loaded.Permission("g_extra")
	require.True(t, ok)
	assert.Equal(t, permission.Write, g.Permission)
	require.NotNil(t, g.ExpiresAt)
	assert.True(t, g.ExpiresAt.Equal(exp))

	// The email index is rebuilt from the loaded users.
	_, ok = loaded.UserByEmail("enterprise_employee@demo.com")
	assert.True(t, ok)
}

func TestSeedFileOverride(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seed := `company:
  name: Acme Robotics
  owner_email: boss@acme.io
users:
  - email: boss@acme.io
    role: enterprise_employer
  - email: dev@acme.io
    role: enterprise_employee
  - email: student@uni.edu
    role: education_user
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.yaml"), []byte(seed), 0o644))

	st, err := newLocalSnapshot(t, dir).Load(ctx)
	require.NoError(t, err)

	assert.Len(t, st.users, 3)
	assert.Empty(t, st.codebases, "seed file datasets start without sample shares")

	boss, ok := st.UserByEmail("boss@acme.io")
	require.True(t, ok)
	comp, ok := st.Company(boss.CompanyID)
	require.True(t, ok)
	assert.Equal(t, "Acme Robotics", comp.Name)
	assert.Equal(t, boss.ID, comp.OwnerID)

	student, ok := st.UserByEmail("student@uni.edu")
	require.True(t, ok)
	assert.Empty(t, student.CompanyID)
}

func TestSeedFileInvalidFallsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seed := `company:
  name: Broken Co
users:
  - email: x@broken.io
    role: not_a_role
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.yaml"), []byte(seed), 0o644))

	st, err := newLocalSnapshot(t, dir).Load(ctx)
	require.NoError(t, err)
	_, ok := st.UserByEmail("enterprise_employer@demo.com")
	assert.True(t, ok, "invalid seed file should fall back to the built-in dataset")
}
