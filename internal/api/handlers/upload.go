package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"shoplite/internal/api/middleware"
	appErrors "shoplite/internal/errors"
	"shoplite/internal/utils/response"

	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadHandler struct {
	dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// UploadImage godoc
//
//	@Summary	Upload a product image (admin)
//	@Tags		Admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"Image file (jpg, png, gif or webp, max 5 MiB)"
//	@Success	201		{object}	response.APIResponse	"Public URL of the stored image"
//	@Failure	400		{object}	response.ErrorResponse	"Missing or unsupported file"
//	@Security	BearerAuth
//	@Router		/admin/uploads [post]
func (h *UploadHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.Error(w, appErrors.ValidationError("File too large or malformed upload").WithError(err))

			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, appErrors.ValidationError("Missing form field 'file'").WithError(err))

			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedImageExts[ext] {
			response.Error(w, appErrors.ValidationError(fmt.Sprintf("Unsupported file type: %s", ext)))

			return
		}

		if err := os.MkdirAll(h.dir, 0o755); err != nil {
			logger.Error("Failed to create upload directory", slog.Any("error", err))
			response.Error(w, appErrors.InternalError("Failed to store file").WithError(err))

			return
		}

		filename := uuid.New().String() + ext

		dst, err := os.Create(filepath.Join(h.dir, filename))
		if err != nil {
			logger.Error("Failed to create file", slog.Any("error", err))
			response.Error(w, appErrors.InternalError("Failed to store file").WithError(err))

			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			logger.Error("Failed to write file", slog.Any("error", err))
			response.Error(w, appErrors.InternalError("Failed to store file").WithError(err))

			return
		}

		logger.Info("Image uploaded", slog.String("filename", filename), slog.Int64("size", header.Size))
		response.Success(w, http.StatusCreated, map[string]string{
			"url": "/api/v1/uploads/" + filename,
		})
	}
}

// ServeImage streams a previously uploaded image. The filename is the
// server-generated one, so path traversal is rejected outright.
func (h *UploadHandler) ServeImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filename := r.PathValue("filename")

		if filename == "" || filename != filepath.Base(filename) {
			response.Error(w, appErrors.ValidationError("Invalid filename"))

			return
		}

		path := filepath.Join(h.dir, filename)

		if _, err := os.Stat(path); err != nil {
			response.Error(w, appErrors.NotFoundError("File not found"))

			return
		}

		http.ServeFile(w, r, path)
	}
}
