package company

import (
	"time"

	"github.com/stacksketch/backend/pkg/jsonx"
)

type Company struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	OwnerID   string         `json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	Settings  map[string]any `json:"settings,omitempty"`
}

func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Settings = jsonx.CloneMap(c.Settings)
	return &cp
}
