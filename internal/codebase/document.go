package codebase

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Document is the validated shape of a codebase data payload. The stored
// form stays an opaque JSON map for snapshot compatibility; this type is
// only used to reject malformed payloads at the boundary and to extract
// the summary fields denormalized onto Share.
type Document struct {
	Repository *RepositoryMeta   `json:"repository,omitempty" validate:"omitempty"`
	FileTree   []*FileNode       `json:"file_tree,omitempty" validate:"omitempty,dive"`
	TechStack  []string          `json:"tech_stack,omitempty" validate:"omitempty,dive,required"`
	TotalFiles int               `json:"total_files,omitempty" validate:"gte=0"`
	TotalSize  int64             `json:"total_size,omitempty" validate:"gte=0"`
	Files      map[string]string `json:"files,omitempty"`
}

type RepositoryMeta struct {
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	Branch   string `json:"branch,omitempty"`
	Commit   string `json:"commit,omitempty"`
	Language string `json:"language,omitempty"`
}

type FileNode struct {
	Path     string      `json:"path" validate:"required"`
	Type     string      `json:"type" validate:"required,oneof=file dir"`
	Size     int64       `json:"size,omitempty" validate:"gte=0"`
	Children []*FileNode `json:"children,omitempty" validate:"omitempty,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseDocument checks that raw codebase data is JSON-serializable and
// that its known fields match the document sub-schema. Unknown keys are
// allowed and preserved in the stored map. A nil map yields a nil document.
func ParseDocument(data map[string]any) (*Document, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("codebase data is not JSON-serializable: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed codebase data: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid codebase data: %w", err)
	}
	return &doc, nil
}
