package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
)

// Comment length limits.
const (
	MaxVisitorNameLength = 100
	MaxCommentLength     = 2000
)

// Comment is a public visitor comment on an application.
type Comment struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	VisitorName   string
	Content       string
	CreatedAt     time.Time
}

// CommentParams holds the input for creating a comment.
type CommentParams struct {
	ApplicationID uuid.UUID
	VisitorName   string
	Content       string
}

// NewComment is a factory function to create a valid new comment.
func NewComment(params CommentParams) (*Comment, error) {
	if params.ApplicationID == uuid.Nil {
		return nil, apperrors.ErrApplicationIDRequired
	}
	if params.VisitorName == "" {
		return nil, apperrors.ErrVisitorNameRequired
	}
	if len(params.VisitorName) > MaxVisitorNameLength {
		return nil, apperrors.ErrVisitorNameTooLong
	}
	if params.Content == "" {
		return nil, apperrors.ErrCommentBodyRequired
	}
	if len(params.Content) > MaxCommentLength {
		return nil, apperrors.ErrCommentBodyTooLong
	}

	return &Comment{
		ApplicationID: params.ApplicationID,
		VisitorName:   params.VisitorName,
		Content:       params.Content,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// CommentWithContext is a comment joined with the company/role it belongs to,
// used by the owner's "recent comments" dashboard widget.
type CommentWithContext struct {
	Comment
	Company string
	Role    string
}
