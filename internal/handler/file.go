package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/service"
)

// multipartOverhead leaves room for the form fields and part headers on
// top of the file itself.
const multipartOverhead = 64 << 10

type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, logger: logger}
}

// HandleUpload handles POST /api/file/upload, a multipart form with a
// "file" part and a "biz" field. It returns the public URL.
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes()+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, h.logger, apperror.ValidationFailed("file", "file is too large"))
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed("file", "file is required"))
		return
	}
	defer file.Close()

	url, err := h.files.Upload(r.Context(), caller(r), r.FormValue("biz"), header.Filename, header.Size, file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, url)
}
