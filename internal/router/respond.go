package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

const maxJSONBodySize = 1 << 20

func writeJSON(response http.ResponseWriter, statusCode int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)

	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}

// statusFor maps the error taxonomy of the services onto HTTP statuses.
func statusFor(err error) int {
	var validationError *models.ValidationError

	switch {
	case errors.As(err, &validationError):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAlreadyVerified):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotAuthorized), errors.Is(err, models.ErrWrongCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEmailInUse):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func logIfInternal(request *http.Request, statusCode int, err error) {
	if statusCode < http.StatusInternalServerError {
		return
	}
	logger.Log.Errorw("request failed",
		"uri", request.RequestURI,
		"method", request.Method,
		"error", err,
	)
}

// WriteUserError writes err as {"message": ...} with the mapped status.
func WriteUserError(response http.ResponseWriter, request *http.Request, err error) {
	statusCode := statusFor(err)
	logIfInternal(request, statusCode, err)

	writeJSON(response, statusCode, models.MessageResponse{Message: err.Error()})
}

func writeContactError(response http.ResponseWriter, request *http.Request, err error) {
	statusCode := statusFor(err)
	logIfInternal(request, statusCode, err)

	writeJSON(response, statusCode, models.ContactEnvelope{
		Status:  statusCode,
		Message: err.Error(),
	})
}

// decodeJSON reads a single JSON object into dst. Unknown fields, trailing
// data and malformed input are reported as *models.ValidationError.
func decodeJSON(request *http.Request, dst any) error {
	return decodeBody(request, dst, true)
}

// decodeJSONFields is decodeJSON for endpoints that pick their fields out
// of the body and ignore the rest.
func decodeJSONFields(request *http.Request, dst any) error {
	return decodeBody(request, dst, false)
}

func decodeBody(request *http.Request, dst any, strict bool) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxJSONBodySize))
	if strict {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("request body must be a JSON object")
		}
		return models.NewValidationError(fmt.Sprintf("invalid request body: %s", err))
	}

	if decoder.More() {
		return models.NewValidationError("request body must contain a single JSON object")
	}

	return nil
}
