// Package router maps the HTTP API onto the services: the public contacts
// CRUD, the users API behind bearer authentication, avatar files, the
// storage health check and the internal statistics.
package router

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/patric-chuzhbe/contactsapi/internal/gzippedhttp"
	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

type contactService interface {
	List(ctx context.Context) ([]models.Contact, error)

	GetByID(ctx context.Context, id string) (*models.Contact, error)

	Create(ctx context.Context, fields models.ContactRequest) (*models.Contact, error)

	Update(ctx context.Context, id string, fields models.ContactRequest) (*models.Contact, error)

	UpdateFavorite(ctx context.Context, id string, fields models.FavoriteRequest) (*models.Contact, error)

	Remove(ctx context.Context, id string) error
}

type userService interface {
	Signup(ctx context.Context, credentials models.CredentialsRequest) (*models.SignupResponse, error)

	Login(ctx context.Context, credentials models.CredentialsRequest) (*models.LoginResponse, error)

	Logout(ctx context.Context, usr *user.User) error

	Current(usr *user.User) *models.CurrentUserResponse

	UpdateAvatar(
		ctx context.Context,
		usr *user.User,
		upload io.Reader,
		originalName string,
	) (*models.AvatarResponse, error)

	VerifyEmail(ctx context.Context, verificationToken string) error

	ResendVerification(ctx context.Context, request models.ResendVerificationRequest) error
}

type healthService interface {
	Ping(ctx context.Context) error

	Stats(ctx context.Context) (*models.InternalStatsResponse, error)
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type avatarOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type subnetGuard interface {
	TrustedSubnetOnly(h http.Handler) http.Handler
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	contacts contactService
	users    userService
	health   healthService
	avatars  avatarOpener
}

type initOptions struct {
	corsOrigins []string
}

// InitOption configures the router.
type InitOption func(*initOptions)

// WithCORSOrigins sets the comma separated list of allowed origins.
func WithCORSOrigins(origins string) InitOption {
	return func(options *initOptions) {
		options.corsOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				options.corsOrigins = append(options.corsOrigins, origin)
			}
		}
	}
}

// New builds the chi router with every route of the API.
func New(
	contacts contactService,
	users userService,
	health healthService,
	avatars avatarOpener,
	auth authenticator,
	trustedSubnet subnetGuard,
	optionsProto ...InitOption,
) *chi.Mux {
	options := &initOptions{
		corsOrigins: []string{"*"},
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	theRouter := &Router{
		contacts: contacts,
		users:    users,
		health:   health,
		avatars:  avatars,
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: options.corsOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Content-Encoding"},
			MaxAge:         300,
		}),
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.NotFound(theRouter.notFound)
	router.MethodNotAllowed(theRouter.methodNotAllowed)

	router.Get(`/ping`, theRouter.GetPing)
	router.Get(`/avatars/{filename}`, theRouter.GetAvatars)
	router.With(trustedSubnet.TrustedSubnetOnly).Get(`/api/internal/stats`, theRouter.GetApiinternalstats)

	router.Route(`/api/contacts`, func(r chi.Router) {
		r.Get(`/`, theRouter.GetApicontacts)
		r.Post(`/`, theRouter.PostApicontacts)
		r.Get(`/{contactId}`, theRouter.GetApicontactsByID)
		r.Put(`/{contactId}`, theRouter.PutApicontacts)
		r.Patch(`/{contactId}`, theRouter.PutApicontacts)
		r.Delete(`/{contactId}`, theRouter.DeleteApicontacts)
		r.Patch(`/{contactId}/favorite`, theRouter.PatchApicontactsFavorite)
	})

	router.Route(`/api/users`, func(r chi.Router) {
		r.Post(`/signup`, theRouter.PostApiusersSignup)
		r.Post(`/login`, theRouter.PostApiusersLogin)
		r.Get(`/verify/{verificationToken}`, theRouter.GetApiusersVerify)
		r.Post(`/verify`, theRouter.PostApiusersVerify)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateUser)
			r.Get(`/logout`, theRouter.GetApiusersLogout)
			r.Get(`/current`, theRouter.GetApiusersCurrent)
			r.Patch(`/avatars`, theRouter.PatchApiusersAvatars)
		})
	})

	return router
}

func (router *Router) notFound(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusNotFound, models.MessageResponse{Message: models.ErrNotFound.Error()})
}

func (router *Router) methodNotAllowed(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusMethodNotAllowed, models.MessageResponse{Message: "Method not allowed"})
}

// GetPing answers 200 when the storage is reachable.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.health.Ping(request.Context()); err != nil {
		logger.Log.Debugw("storage ping failed", "error", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetApiinternalstats reports the number of contacts and users.
func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.health.Stats(request.Context())
	if err != nil {
		WriteUserError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}
