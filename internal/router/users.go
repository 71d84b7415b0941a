package router

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/contactsapi/internal/auth"
	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

const (
	avatarFormField     = "avatar"
	maxAvatarUploadSize = 10 << 20

	verificationSuccessfulMessage = "Verification successful"
	verificationSentMessage       = "Verification email sent"
)

func (router *Router) PostApiusersSignup(response http.ResponseWriter, request *http.Request) {
	var credentials models.CredentialsRequest
	if err := decodeJSON(request, &credentials); err != nil {
		WriteUserError(response, request, err)
		return
	}

	signedUp, err := router.users.Signup(request.Context(), credentials)
	if err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, signedUp)
}

func (router *Router) PostApiusersLogin(response http.ResponseWriter, request *http.Request) {
	var credentials models.CredentialsRequest
	if err := decodeJSON(request, &credentials); err != nil {
		WriteUserError(response, request, err)
		return
	}

	loggedIn, err := router.users.Login(request.Context(), credentials)
	if err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, loggedIn)
}

// currentUser fetches the user put into the context by the auth middleware.
func currentUser(response http.ResponseWriter, request *http.Request) (*user.User, bool) {
	usr, ok := auth.UserFromContext(request.Context())
	if !ok {
		WriteUserError(response, request, models.ErrNotAuthorized)
		return nil, false
	}

	return usr, true
}

func (router *Router) GetApiusersLogout(response http.ResponseWriter, request *http.Request) {
	usr, ok := currentUser(response, request)
	if !ok {
		return
	}

	if err := router.users.Logout(request.Context(), usr); err != nil {
		WriteUserError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

func (router *Router) GetApiusersCurrent(response http.ResponseWriter, request *http.Request) {
	usr, ok := currentUser(response, request)
	if !ok {
		return
	}

	writeJSON(response, http.StatusOK, router.users.Current(usr))
}

// PatchApiusersAvatars accepts a multipart form with the picture in the
// "avatar" part. A request without that part is a 400.
func (router *Router) PatchApiusersAvatars(response http.ResponseWriter, request *http.Request) {
	usr, ok := currentUser(response, request)
	if !ok {
		return
	}

	request.Body = http.MaxBytesReader(response, request.Body, maxAvatarUploadSize)

	file, header, err := request.FormFile(avatarFormField)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			WriteUserError(response, request, models.NewValidationError("file avatar is too large"))
			return
		}
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			logger.Log.Debugln("Error calling the `request.FormFile()`: ", zap.Error(err))
		}
		WriteUserError(response, request, models.ErrNoAvatarFile)
		return
	}
	defer file.Close()

	updated, err := router.users.UpdateAvatar(request.Context(), usr, file, header.Filename)
	if err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, updated)
}

func (router *Router) GetApiusersVerify(response http.ResponseWriter, request *http.Request) {
	err := router.users.VerifyEmail(request.Context(), chi.URLParam(request, "verificationToken"))
	if err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.MessageResponse{Message: verificationSuccessfulMessage})
}

func (router *Router) PostApiusersVerify(response http.ResponseWriter, request *http.Request) {
	var resend models.ResendVerificationRequest
	if err := decodeJSON(request, &resend); err != nil {
		WriteUserError(response, request, err)
		return
	}

	if err := router.users.ResendVerification(request.Context(), resend); err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.MessageResponse{Message: verificationSentMessage})
}
