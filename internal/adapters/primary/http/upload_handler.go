package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
)

// allowedUploadExtensions are the file types the CV/cover-letter upload
// accepts. Everything else is rejected before touching disk.
var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// UploadHandler stores CV and cover-letter files for the owner.
type UploadHandler struct {
	dir          string
	maxBytes     int64
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewUploadHandler creates a new upload handler writing into dir.
func NewUploadHandler(dir string, maxBytes int64, errorHandler *ErrorHandler, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		dir:          dir,
		maxBytes:     maxBytes,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "upload"),
	}
}

// UploadResponse returns the server-side path of the stored file, suitable
// for the cv_path / cover_letter_path application fields.
type UploadResponse struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// HandleUpload handles POST /api/upload (multipart, field name "file").
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Missing or oversized file upload"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExtensions[ext] {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(
			fmt.Errorf("extension %q not allowed", ext),
			"File type not allowed"))
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Random name on disk; the original name survives only in the response.
	storedName := uuid.NewString() + ext
	dstPath := filepath.Join(h.dir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dstPath)
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("file uploaded",
		"stored_name", storedName,
		"original_name", header.Filename,
		"size", size,
	)

	WriteCreated(w, UploadResponse{
		Path:     "/uploads/" + storedName,
		Filename: header.Filename,
		Size:     size,
	})
}
