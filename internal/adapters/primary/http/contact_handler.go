package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jobtrail/jobtrail-backend/internal/adapters/primary/validation"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

const maxContactMessageLength = 5000

// ContactHandler forwards contact-form submissions to the notifier.
type ContactHandler struct {
	notifier     ports.Notifier
	recipient    string
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewContactHandler creates a new contact handler. recipient is the owner's
// address contact mail is delivered to.
func NewContactHandler(
	notifier ports.Notifier,
	recipient string,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ContactHandler {
	return &ContactHandler{
		notifier:     notifier,
		recipient:    recipient,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "contact"),
	}
}

// ContactRequest defines the expected JSON body for the contact form.
// BotField is the same honeypot used on the comment form.
type ContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	BotField string `json:"bot_field"`
}

// Validate validates the contact request
func (r *ContactRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, 100)

	v.Required("email", r.Email).
		Email("email", r.Email)

	v.Required("message", r.Message).
		MaxLength("message", r.Message, maxContactMessageLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleContact handles POST /api/contact
func (h *ContactHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[ContactRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if req.BotField != "" {
		h.logger.Warn("honeypot triggered on contact form")
		WriteJSON(w, http.StatusOK, SuccessResponse{Message: "Message sent"})
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Delivery is async and best-effort, like verification mail. Use a
	// fresh context so cancellation of this request doesn't kill it.
	go h.notifier.Notify(context.Background(), ports.NotificationParams{
		RecipientEmail: h.recipient,
		Subject:        fmt.Sprintf("Contact form: %s", req.Name),
		Message:        fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message),
	})

	h.logger.Info("contact form submitted", "sender_email", req.Email)

	WriteJSON(w, http.StatusOK, SuccessResponse{Message: "Message sent"})
}
