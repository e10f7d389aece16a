package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/company"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/internal/user"
	"github.com/stacksketch/backend/pkg/cerr"
	"github.com/stacksketch/backend/pkg/storage"
)

const snapshotPath = "snapshot.json"

// snapshotDoc is the persisted layout: one JSON document with four
// top-level keys, each a mapping from entity id to its fields, with
// timestamps encoded as RFC3339 strings. The shape is fixed for
// compatibility with previously written snapshots.
type snapshotDoc struct {
	Codebases   map[string]*codebase.Share   `json:"codebases"`
	Permissions map[string]*permission.Grant `json:"permissions"`
	Companies   map[string]*company.Company  `json:"companies"`
	Users       map[string]*user.User        `json:"users"`
}

// Snapshot persists the full entity state as a single JSON document.
type Snapshot struct {
	storage storage.Storage
}

func NewSnapshot(s storage.Storage) *Snapshot {
	return &Snapshot{storage: s}
}

// Load reads the snapshot into a fresh State. A missing or unreadable
// snapshot falls back to the bootstrap dataset, which is persisted
// immediately so the next start finds a valid file.
func (sn *Snapshot) Load(ctx context.Context) (*State, error) {
	exists, err := sn.storage.Exists(ctx, snapshotPath)
	if err != nil {
		return nil, cerr.WrapStorageReadError("snapshot", err)
	}
	if !exists {
		slog.Info("no snapshot found, seeding bootstrap data")
		return sn.seed(ctx)
	}
	data, err := sn.storage.Read(ctx, snapshotPath)
	if err != nil {
		return nil, cerr.WrapStorageReadError("snapshot", err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("snapshot is unparsable, reseeding bootstrap data", "error", err)
		return sn.seed(ctx)
	}

	// A hand-edited snapshot may carry explicit null entries; drop them
	// instead of crashing startup.
	st := newState()
	for id, c := range doc.Companies {
		if c == nil {
			slog.Warn("skipping null company entry in snapshot", "id", id)
			continue
		}
		if c.ID == "" {
			c.ID = id
		}
		st.companies[c.ID] = c
	}
	for id, u := range doc.Users {
		if u == nil {
			slog.Warn("skipping null user entry in snapshot", "id", id)
			continue
		}
		if u.ID == "" {
			u.ID = id
		}
		st.users[u.ID] = u
		st.usersByEmail[u.Email] = u.ID
	}
	for id, cb := range doc.Codebases {
		if cb == nil {
			slog.Warn("skipping null codebase entry in snapshot", "id", id)
			continue
		}
		if cb.ID == "" {
			cb.ID = id
		}
		st.codebases[cb.ID] = cb
	}
	for id, g := range doc.Permissions {
		if g == nil {
			slog.Warn("skipping null permission entry in snapshot", "id", id)
			continue
		}
		if g.ID == "" {
			g.ID = id
		}
		st.permissions[g.ID] = g
	}
	return st, nil
}

func (sn *Snapshot) seed(ctx context.Context) (*State, error) {
	st, err := sn.seedState(ctx)
	if err != nil {
		return nil, err
	}
	if err := sn.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Save serializes the full state and writes it atomically. A value that
// cannot be encoded as JSON is reported as an error without touching the
// existing snapshot.
func (sn *Snapshot) Save(ctx context.Context, st *State) error {
	doc := snapshotDoc{
		Codebases:   st.codebases,
		Permissions: st.permissions,
		Companies:   st.companies,
		Users:       st.users,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to serialize snapshot", fmt.Errorf("marshal snapshot: %w", err))
	}
	if err := sn.storage.Write(ctx, snapshotPath, data); err != nil {
		return cerr.WrapStorageWriteError("snapshot", err)
	}
	return nil
}
