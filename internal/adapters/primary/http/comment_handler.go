package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/jobtrail/jobtrail-backend/internal/adapters/primary/http/middleware"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/primary/validation"
	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// CommentHandler handles HTTP requests for visitor comments.
type CommentHandler struct {
	commentService ports.CommentService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(
	commentService ports.CommentService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "comment"),
	}
}

// RegisterPublicRoutes mounts the visitor-facing comment endpoints nested
// under /public/applications/{applicationID}.
func (h *CommentHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.HandleListComments)
	r.Post("/", h.HandleCreateComment)
}

// --- Request/Response DTOs ---

// CreateCommentRequest defines the expected JSON body for creating a comment.
// BotField is a honeypot: it is invisible on the real form, so any non-empty
// value means an automated submitter filled it in.
type CreateCommentRequest struct {
	VisitorName string `json:"visitor_name"`
	Content     string `json:"content"`
	BotField    string `json:"bot_field"`
}

// Validate validates the create comment request
func (r *CreateCommentRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("visitor_name", r.VisitorName).
		MaxLength("visitor_name", r.VisitorName, domain.MaxVisitorNameLength)

	v.Required("content", r.Content).
		MaxLength("content", r.Content, domain.MaxCommentLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CommentDTO defines the JSON response for comments.
type CommentDTO struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	VisitorName   string `json:"visitor_name"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
}

func toCommentDTO(c *domain.Comment) CommentDTO {
	return CommentDTO{
		ID:            c.ID.String(),
		ApplicationID: c.ApplicationID.String(),
		VisitorName:   c.VisitorName,
		Content:       c.Content,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}

// CommentWithContextDTO is a comment plus the application it belongs to.
type CommentWithContextDTO struct {
	CommentDTO
	Company string `json:"company"`
	Role    string `json:"role"`
}

// --- Handlers ---

// HandleListComments handles GET /api/public/applications/{applicationID}/comments
func (h *CommentHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comments, err := h.commentService.ListForApplication(r.Context(), appID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, toCommentDTO(c))
	}
	WriteList(w, dtos)
}

// HandleCreateComment handles POST /api/public/applications/{applicationID}/comments
func (h *CommentHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	appID, err := parseApplicationID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateCommentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Bots get a success response and no side effects, so they don't learn
	// they were caught.
	if req.BotField != "" {
		h.logger.Warn("honeypot triggered", "application_id", appID)
		WriteCreated(w, CommentDTO{})
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), ports.CreateCommentParams{
		ApplicationID: appID,
		VisitorName:   req.VisitorName,
		Content:       req.Content,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("comment created",
		"comment_id", comment.ID,
		"application_id", appID,
	)

	WriteCreated(w, toCommentDTO(comment))
}

// HandleRecentComments handles GET /api/comments/recent (authenticated).
func (h *CommentHandler) HandleRecentComments(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	comments, err := h.commentService.RecentForOwner(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]CommentWithContextDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, CommentWithContextDTO{
			CommentDTO: toCommentDTO(&c.Comment),
			Company:    c.Company,
			Role:       c.Role,
		})
	}
	WriteList(w, dtos)
}
