// Package auth issues and checks the bearer tokens of the users API.
// A token is an HS256 JWT carrying the user id; it is accepted only while
// it equals the token stored on the user, so a new login or a logout
// invalidates every earlier token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

type userKeeper interface {
	GetUserByID(ctx context.Context, id string) (*user.User, bool, error)
}

// ErrorWriter renders an authentication failure. The router passes its
// own envelope writer so 401 bodies look like every other user error.
type ErrorWriter func(response http.ResponseWriter, request *http.Request, err error)

// Auth signs tokens and guards the routes that need a logged in user.
type Auth struct {
	// db is the interface to the user data storage.
	db userKeeper

	// signingSecretKey is the key used to sign JWTs.
	signingSecretKey []byte

	// tokenTTL is the lifetime of an issued token.
	tokenTTL time.Duration

	writeError ErrorWriter
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserKey is the context key under which AuthenticateUser stores the *user.User.
const UserKey ContextKey = "user"

const bearerPrefix = "Bearer "

type initOptions struct {
	writeError ErrorWriter
}

// InitOption configures Auth.
type InitOption func(*initOptions)

// WithErrorWriter replaces the default plain text 401 writer.
func WithErrorWriter(writer ErrorWriter) InitOption {
	return func(options *initOptions) {
		options.writeError = writer
	}
}

// New creates a new Auth with the given user storage, signing secret and token lifetime.
func New(
	db userKeeper,
	signingSecretKey []byte,
	tokenTTL time.Duration,
	optionsProto ...InitOption,
) *Auth {
	options := &initOptions{
		writeError: func(response http.ResponseWriter, _ *http.Request, err error) {
			http.Error(response, err.Error(), http.StatusUnauthorized)
		},
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	return &Auth{
		db:               db,
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
		writeError:       options.writeError,
	}
}

// UserFromContext returns the user attached by AuthenticateUser.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	usr, ok := ctx.Value(UserKey).(*user.User)
	return usr, ok && usr != nil
}

// AuthenticateUser is an HTTP middleware that requires a valid
// "Authorization: Bearer <token>" header whose token is the one currently
// stored on the user. The resolved user is put into the request context.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		usr, err := a.authenticate(request)
		if err != nil {
			if !errors.Is(err, models.ErrNotAuthorized) {
				logger.Log.Debugln("Error calling the `a.authenticate()`: ", zap.Error(err))
			}
			a.writeError(response, request, err)
			return
		}

		ctx := context.WithValue(request.Context(), UserKey, usr)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

func (a *Auth) authenticate(request *http.Request) (*user.User, error) {
	tokenString, ok := strings.CutPrefix(request.Header.Get("Authorization"), bearerPrefix)
	if !ok || tokenString == "" {
		return nil, models.ErrNotAuthorized
	}

	userID, err := a.GetUserIDFromToken(tokenString)
	if err != nil {
		return nil, models.ErrNotAuthorized
	}

	usr, found, err := a.db.GetUserByID(request.Context(), userID)
	if err != nil {
		return nil,
			fmt.Errorf("in internal/auth/auth.go/authenticate(): error while `a.db.GetUserByID()` calling: %w", err)
	}
	if !found || usr.Token == "" || usr.Token != tokenString {
		return nil, models.ErrNotAuthorized
	}

	return usr, nil
}

// BuildJWTString signs a token for userID that expires after the configured TTL.
// Every call yields a distinct token, even within the same second.
func (a *Auth) BuildJWTString(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken checks the signature and expiry of tokenString and
// returns the user id it carries.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", models.ErrNotAuthorized
	}

	return claims.UserID, nil
}
