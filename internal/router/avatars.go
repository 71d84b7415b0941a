package router

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore"
	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

// GetAvatars streams a stored avatar from whichever store is configured.
func (router *Router) GetAvatars(response http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "filename")

	file, err := router.avatars.Open(request.Context(), name)
	if errors.Is(err, filestore.ErrNotExist) {
		WriteUserError(response, request, models.ErrNotFound)
		return
	}
	if err != nil {
		WriteUserError(response, request, err)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	response.Header().Set("Content-Type", contentType)
	response.Header().Set("Cache-Control", "public, max-age=86400")
	response.WriteHeader(http.StatusOK)

	if _, err := io.Copy(response, file); err != nil {
		logger.Log.Debugln("Error calling the `io.Copy()`: ", zap.Error(err))
	}
}
