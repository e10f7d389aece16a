package sharing

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacksketch/backend/internal/actorctx"
	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/internal/permission"
	"github.com/stacksketch/backend/pkg/cerr"
)

// Server exposes the sharing operations as a JSON HTTP API. Responses and
// errors are deposited in the context and rendered by the cerr chi
// middleware.
type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/codebases", s.handleShareCodebase)
	r.Get("/codebases", s.handleListMyCodebases)
	r.Get("/codebases/{codebaseID}", s.handleGetCodebase)
	r.Get("/codebases/{codebaseID}/data", s.handleGetCodebaseData)
	r.Put("/codebases/{codebaseID}/data", s.handleSaveCodebaseData)
	r.Get("/codebases/{codebaseID}/permissions", s.handleGetPermissions)
	r.Post("/codebases/{codebaseID}/permissions", s.handleGrantPermission)
}

type shareCodebaseRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CompanyID   string         `json:"company_id"`
	IsPublic    bool           `json:"is_public"`
	Data        map[string]any `json:"codebase_data"`
}

func (s *Server) handleShareCodebase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	var req shareCodebaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	cb, err := s.svc.ShareCodebase(ctx, ShareCodebaseInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerEmail:  actor,
		CompanyID:   req.CompanyID,
		IsPublic:    req.IsPublic,
		Data:        req.Data,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, cb)
}

func (s *Server) handleListMyCodebases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	codebases, err := s.svc.ListMyCodebases(ctx, actor)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if codebases == nil {
		codebases = []*codebase.Share{}
	}
	cerr.SetJSONResponse(ctx, struct {
		Codebases []*codebase.Share `json:"codebases"`
	}{codebases})
}

func (s *Server) handleGetCodebase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	cb, err := s.svc.GetCodebase(ctx, chi.URLParam(r, "codebaseID"), actor)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, cb)
}

func (s *Server) handleGetCodebaseData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	data, err := s.svc.GetCodebaseData(ctx, chi.URLParam(r, "codebaseID"), actor)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	cerr.SetJSONResponse(ctx, data)
}

type saveCodebaseRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	OwnerEmail  *string        `json:"owner_email"`
	CompanyID   *string        `json:"company_id"`
	IsPublic    *bool          `json:"is_public"`
	Data        map[string]any `json:"codebase_data"`
}

func (s *Server) handleSaveCodebaseData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	var req saveCodebaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	cb, err := s.svc.SaveCodebaseData(ctx, chi.URLParam(r, "codebaseID"), actor, SaveCodebaseInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerEmail:  req.OwnerEmail,
		CompanyID:   req.CompanyID,
		IsPublic:    req.IsPublic,
		Data:        req.Data,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, cb)
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	grants, err := s.svc.GetPermissions(ctx, chi.URLParam(r, "codebaseID"), actor)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if grants == nil {
		grants = []*permission.Grant{}
	}
	cerr.SetJSONResponse(ctx, struct {
		Permissions []*permission.Grant `json:"permissions"`
	}{grants})
}

type grantPermissionRequest struct {
	GranteeEmail string     `json:"user_email"`
	Permission   string     `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (s *Server) handleGrantPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	var req grantPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	g, err := s.svc.GrantPermission(ctx, GrantPermissionInput{
		CodebaseID:   chi.URLParam(r, "codebaseID"),
		GrantorEmail: actor,
		GranteeEmail: req.GranteeEmail,
		Permission:   permission.Level(req.Permission),
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, g)
}
