package codebase

import (
	"time"

	"github.com/stacksketch/backend/pkg/jsonx"
)

// Share is a snapshot of an analyzed repository shared within a company.
// Data holds the opaque codebase document (file tree, repository metadata,
// file contents) needed to re-render the analyzed repository.
type Share struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	OwnerEmail  string         `json:"owner_email"`
	CompanyID   string         `json:"company_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	IsPublic    bool           `json:"is_public"`
	TechStack   []string       `json:"tech_stack,omitempty"`
	TotalFiles  int            `json:"total_files"`
	TotalSize   int64          `json:"total_size"`
	Data        map[string]any `json:"codebase_data,omitempty"`
}

// Clone returns an independent copy; the codebase document is deep-copied.
func (s *Share) Clone() *Share {
	if s == nil {
		return nil
	}
	cp := *s
	if s.TechStack != nil {
		cp.TechStack = make([]string, len(s.TechStack))
		copy(cp.TechStack, s.TechStack)
	}
	cp.Data = jsonx.CloneMap(s.Data)
	return &cp
}
