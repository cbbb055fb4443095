package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/jobtrail/jobtrail-backend/internal/adapters/primary/http/middleware"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/primary/validation"
	"github.com/jobtrail/jobtrail-backend/internal/auth"
	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// ApplicationHandler handles HTTP requests for the application pipeline.
type ApplicationHandler struct {
	appService     ports.ApplicationService
	commentService ports.CommentService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(
	appService ports.ApplicationService,
	commentService ports.CommentService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		appService:     appService,
		commentService: commentService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "application"),
	}
}

// RegisterRoutes sets up the routing for the authenticated application
// endpoints. The router is expected to sit behind the JWT middleware.
func (h *ApplicationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/stats", h.HandleStats)

	r.Route("/{applicationID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
	})
}

// RegisterPublicRoutes sets up the unauthenticated read-only views.
func (h *ApplicationHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.HandleListPublic)
	r.Get("/{applicationID}", h.HandleGetPublicDetail)
}

// --- Request/Response DTOs ---

// CreateApplicationRequest defines the expected JSON body for creating an application
type CreateApplicationRequest struct {
	Company         string  `json:"company"`
	CompanyWebsite  *string `json:"company_website"`
	Role            string  `json:"role"`
	Status          string  `json:"status"`
	Salary          *string `json:"salary"`
	ContactPerson   *string `json:"contact_person"`
	CVVersion       *string `json:"cv_version"`
	CVPath          *string `json:"cv_path"`
	CoverLetter     *string `json:"cover_letter"`
	CoverLetterPath *string `json:"cover_letter_path"`
	LogoURL         *string `json:"logo_url"`
	Description     *string `json:"description"`
}

// Validate validates the create application request
func (r *CreateApplicationRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("company", r.Company).
		MaxLength("company", r.Company, domain.MaxCompanyLength)

	v.Required("role", r.Role).
		MaxLength("role", r.Role, domain.MaxRoleLength)

	v.MaxLength("status", r.Status, domain.MaxStatusLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateApplicationRequest defines the partial-update body. Absent fields
// keep their stored value.
type UpdateApplicationRequest struct {
	Company         *string `json:"company"`
	CompanyWebsite  *string `json:"company_website"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	Salary          *string `json:"salary"`
	ContactPerson   *string `json:"contact_person"`
	CVVersion       *string `json:"cv_version"`
	CVPath          *string `json:"cv_path"`
	CoverLetter     *string `json:"cover_letter"`
	CoverLetterPath *string `json:"cover_letter_path"`
	LogoURL         *string `json:"logo_url"`
	Description     *string `json:"description"`
}

// Validate validates the update application request
func (r *UpdateApplicationRequest) Validate() error {
	v := validation.NewValidator()

	if r.Company != nil {
		v.Required("company", *r.Company).
			MaxLength("company", *r.Company, domain.MaxCompanyLength)
	}
	if r.Role != nil {
		v.Required("role", *r.Role).
			MaxLength("role", *r.Role, domain.MaxRoleLength)
	}
	if r.Status != nil {
		v.MaxLength("status", *r.Status, domain.MaxStatusLength)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ApplicationDTO defines the JSON response for the owner's view.
type ApplicationDTO struct {
	ID              string  `json:"id"`
	Company         string  `json:"company"`
	CompanyWebsite  *string `json:"company_website"`
	Role            string  `json:"role"`
	Status          string  `json:"status"`
	Salary          *string `json:"salary"`
	ContactPerson   *string `json:"contact_person"`
	CVVersion       *string `json:"cv_version"`
	CVPath          *string `json:"cv_path"`
	CoverLetter     *string `json:"cover_letter"`
	CoverLetterPath *string `json:"cover_letter_path"`
	LogoURL         *string `json:"logo_url"`
	Description     *string `json:"description"`
	CommentCount    int64   `json:"comment_count"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toApplicationDTO(app *domain.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:              app.ID.String(),
		Company:         app.Company,
		CompanyWebsite:  app.CompanyWebsite,
		Role:            app.Role,
		Status:          app.Status,
		Salary:          app.Salary,
		ContactPerson:   app.ContactPerson,
		CVVersion:       app.CVVersion,
		CVPath:          app.CVPath,
		CoverLetter:     app.CoverLetter,
		CoverLetterPath: app.CoverLetterPath,
		LogoURL:         app.LogoURL,
		Description:     app.Description,
		CommentCount:    app.CommentCount,
		CreatedAt:       app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       app.UpdatedAt.Format(time.RFC3339),
	}
}

func toApplicationDTOs(apps []*domain.Application) []ApplicationDTO {
	response := make([]ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		response = append(response, toApplicationDTO(app))
	}
	return response
}

// PublicApplicationDTO is the trimmed view served to visitors.
type PublicApplicationDTO struct {
	ID             string  `json:"id"`
	Company        string  `json:"company"`
	CompanyWebsite *string `json:"company_website"`
	Role           string  `json:"role"`
	Status         string  `json:"status"`
	LogoURL        *string `json:"logo_url"`
	CreatedAt      string  `json:"created_at"`
}

// PublicApplicationDetailDTO is the public detail view.
type PublicApplicationDetailDTO struct {
	ID             string  `json:"id"`
	Company        string  `json:"company"`
	CompanyWebsite *string `json:"company_website"`
	Role           string  `json:"role"`
	Status         string  `json:"status"`
	Salary         *string `json:"salary"`
	CoverLetter    *string `json:"cover_letter"`
	CVPath         *string `json:"cv_path"`
	LogoURL        *string `json:"logo_url"`
	Description    *string `json:"description"`
	CreatedAt      string  `json:"created_at"`
}

// DashboardStatsDTO carries both dashboard chart datasets.
type DashboardStatsDTO struct {
	DailyActivity      []DailyCountDTO  `json:"daily_activity"`
	StatusDistribution []StatusCountDTO `json:"status_distribution"`
}

type DailyCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// --- Handlers ---

// HandleList handles GET /api/applications
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	apps, err := h.appService.List(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toApplicationDTOs(apps))
}

// HandleCreate handles POST /api/applications
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateApplicationRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	app, err := h.appService.Create(r.Context(), ports.CreateApplicationParams{
		OwnerID:         claims.UserID,
		Company:         req.Company,
		CompanyWebsite:  req.CompanyWebsite,
		Role:            req.Role,
		Status:          req.Status,
		Salary:          req.Salary,
		ContactPerson:   req.ContactPerson,
		CVVersion:       req.CVVersion,
		CVPath:          req.CVPath,
		CoverLetter:     req.CoverLetter,
		CoverLetterPath: req.CoverLetterPath,
		LogoURL:         req.LogoURL,
		Description:     req.Description,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("application created",
		"application_id", app.ID,
		"company", app.Company,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toApplicationDTO(app))
}

// HandleGet handles GET /api/applications/{applicationID}
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	app, err := h.appService.Get(r.Context(), appID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toApplicationDTO(app))
}

// HandleUpdate handles PUT /api/applications/{applicationID}
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateApplicationRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	app, err := h.appService.Update(r.Context(), appID, claims.UserID, ports.UpdateApplicationParams{
		Company:         req.Company,
		CompanyWebsite:  req.CompanyWebsite,
		Role:            req.Role,
		Status:          req.Status,
		Salary:          req.Salary,
		ContactPerson:   req.ContactPerson,
		CVVersion:       req.CVVersion,
		CVPath:          req.CVPath,
		CoverLetter:     req.CoverLetter,
		CoverLetterPath: req.CoverLetterPath,
		LogoURL:         req.LogoURL,
		Description:     req.Description,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("application updated",
		"application_id", appID,
		"status", app.Status,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toApplicationDTO(app))
}

// HandleDelete handles DELETE /api/applications/{applicationID}
func (h *ApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.appService.Delete(r.Context(), appID, claims.UserID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("application deleted",
		"application_id", appID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

// HandleStats handles GET /api/applications/stats
func (h *ApplicationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	stats, err := h.appService.Stats(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dto := DashboardStatsDTO{
		DailyActivity:      make([]DailyCountDTO, 0, len(stats.DailyActivity)),
		StatusDistribution: make([]StatusCountDTO, 0, len(stats.StatusDistribution)),
	}
	for _, d := range stats.DailyActivity {
		dto.DailyActivity = append(dto.DailyActivity, DailyCountDTO{Date: d.Date, Count: d.Count})
	}
	for _, s := range stats.StatusDistribution {
		dto.StatusDistribution = append(dto.StatusDistribution, StatusCountDTO{Status: s.Status, Count: s.Count})
	}

	WriteJSON(w, http.StatusOK, dto)
}

// HandleListPublic handles GET /api/public/applications
func (h *ApplicationHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	apps, err := h.appService.ListPublic(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]PublicApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dtos = append(dtos, PublicApplicationDTO{
			ID:             app.ID.String(),
			Company:        app.Company,
			CompanyWebsite: app.CompanyWebsite,
			Role:           app.Role,
			Status:         app.Status,
			LogoURL:        app.LogoURL,
			CreatedAt:      app.CreatedAt.Format(time.RFC3339),
		})
	}

	WriteList(w, dtos)
}

// HandleGetPublicDetail handles GET /api/public/applications/{applicationID}
func (h *ApplicationHandler) HandleGetPublicDetail(w http.ResponseWriter, r *http.Request) {
	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	detail, err := h.appService.GetPublicDetail(r.Context(), appID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, PublicApplicationDetailDTO{
		ID:             detail.ID.String(),
		Company:        detail.Company,
		CompanyWebsite: detail.CompanyWebsite,
		Role:           detail.Role,
		Status:         detail.Status,
		Salary:         detail.Salary,
		CoverLetter:    detail.CoverLetter,
		CVPath:         detail.CVPath,
		LogoURL:        detail.LogoURL,
		Description:    detail.Description,
		CreatedAt:      detail.CreatedAt.Format(time.RFC3339),
	})
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *ApplicationHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}

// parseApplicationID extracts and validates the application ID from the URL
func parseApplicationID(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "applicationID")
	appID, err := uuid.Parse(idStr)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("applicationID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return appID, nil
}
