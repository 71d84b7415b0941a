package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/mailer"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

const (
	passwordHashCost = 10

	verificationSubject = "Verify your email"
	verificationPath    = "/api/users/verify/"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error)

	SetUserToken(ctx context.Context, id, token string) error

	SetUserAvatarURL(ctx context.Context, id, avatarURL string) error

	MarkUserVerified(ctx context.Context, id string) error
}

type tokenIssuer interface {
	BuildJWTString(userID string) (string, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type avatarProcessor interface {
	Process(ctx context.Context, userID string, upload io.Reader, originalName string) (string, error)
}

type UserService struct {
	db        userKeeper
	tokens    tokenIssuer
	mail      mailSender
	avatars   avatarProcessor
	validator structValidator
	publicURL string
}

func NewUserService(
	db userKeeper,
	tokens tokenIssuer,
	mail mailSender,
	avatars avatarProcessor,
	validator structValidator,
	publicURL string,
) *UserService {
	return &UserService{
		db:        db,
		tokens:    tokens,
		mail:      mail,
		avatars:   avatars,
		validator: validator,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// GravatarURL is the default avatar of a new account.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=250&d=identicon"
}

// Signup registers an unverified account and mails the verification link.
// The account is kept when the mail cannot be sent; the error is returned.
func (s *UserService) Signup(ctx context.Context, credentials models.CredentialsRequest) (*models.SignupResponse, error) {
	if err := s.validator.Struct(credentials); err != nil {
		return nil, err
	}

	_, found, err := s.db.GetUserByEmail(ctx, credentials.Email)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Signup(): error while `s.db.GetUserByEmail()` calling: %w", err)
	}
	if found {
		return nil, models.ErrEmailInUse
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Signup(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	usr := &user.User{
		Email:             credentials.Email,
		PasswordHash:      string(passwordHash),
		Subscription:      user.SubscriptionStarter,
		AvatarURL:         GravatarURL(credentials.Email),
		Verify:            false,
		VerificationToken: uuid.NewString(),
	}

	_, err = s.db.CreateUser(ctx, usr)
	if errors.Is(err, models.ErrDuplicateEmail) {
		return nil, models.ErrEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Signup(): error while `s.db.CreateUser()` calling: %w", err)
	}

	if err := s.sendVerification(ctx, usr.Email, usr.VerificationToken); err != nil {
		return nil, err
	}

	return &models.SignupResponse{
		User: models.SignupUser{
			Email:        usr.Email,
			Subscription: usr.Subscription,
			AvatarURL:    usr.AvatarURL,
		},
	}, nil
}

// Login issues a new token and makes it the only valid one for the user.
// Unknown emails and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, credentials models.CredentialsRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(credentials); err != nil {
		return nil, err
	}

	usr, found, err := s.db.GetUserByEmail(ctx, credentials.Email)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Login(): error while `s.db.GetUserByEmail()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrWrongCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(credentials.Password))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Log.Debugln("Error calling the `bcrypt.CompareHashAndPassword()`: ", zap.Error(err))
		}
		return nil, models.ErrWrongCredentials
	}

	token, err := s.tokens.BuildJWTString(usr.ID)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Login(): error while `s.tokens.BuildJWTString()` calling: %w", err)
	}

	if err := s.db.SetUserToken(ctx, usr.ID, token); err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Login(): error while `s.db.SetUserToken()` calling: %w", err)
	}

	return &models.LoginResponse{
		Token: token,
		User: models.CurrentUserResponse{
			Email:        usr.Email,
			Subscription: usr.Subscription,
		},
	}, nil
}

// Logout clears the stored token.
func (s *UserService) Logout(ctx context.Context, usr *user.User) error {
	if err := s.db.SetUserToken(ctx, usr.ID, ""); err != nil {
		return fmt.Errorf("in internal/service/users.go/Logout(): error while `s.db.SetUserToken()` calling: %w", err)
	}

	return nil
}

func (s *UserService) Current(usr *user.User) *models.CurrentUserResponse {
	return &models.CurrentUserResponse{
		Email:        usr.Email,
		Subscription: usr.Subscription,
	}
}

// UpdateAvatar stores a resized copy of upload and points the user to it.
func (s *UserService) UpdateAvatar(
	ctx context.Context,
	usr *user.User,
	upload io.Reader,
	originalName string,
) (*models.AvatarResponse, error) {
	if upload == nil {
		return nil, models.ErrNoAvatarFile
	}

	avatarURL, err := s.avatars.Process(ctx, usr.ID, upload, originalName)
	if err != nil {
		return nil, err
	}

	if err := s.db.SetUserAvatarURL(ctx, usr.ID, avatarURL); err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/UpdateAvatar(): error while `s.db.SetUserAvatarURL()` calling: %w", err)
	}

	return &models.AvatarResponse{AvatarURL: avatarURL}, nil
}

// VerifyEmail confirms the account holding verificationToken. The token
// is single use: a second call gets models.ErrUserNotFound.
func (s *UserService) VerifyEmail(ctx context.Context, verificationToken string) error {
	usr, found, err := s.db.GetUserByVerificationToken(ctx, verificationToken)
	if err != nil {
		return fmt.Errorf(
			"in internal/service/users.go/VerifyEmail(): error while `s.db.GetUserByVerificationToken()` calling: %w",
			err,
		)
	}
	if !found {
		return models.ErrUserNotFound
	}

	if err := s.db.MarkUserVerified(ctx, usr.ID); err != nil {
		return fmt.Errorf("in internal/service/users.go/VerifyEmail(): error while `s.db.MarkUserVerified()` calling: %w", err)
	}

	return nil
}

// ResendVerification mails the existing verification link once more.
func (s *UserService) ResendVerification(ctx context.Context, request models.ResendVerificationRequest) error {
	if strings.TrimSpace(request.Email) == "" {
		return models.ErrMissingEmail
	}
	if err := s.validator.Struct(request); err != nil {
		return err
	}

	usr, found, err := s.db.GetUserByEmail(ctx, request.Email)
	if err != nil {
		return fmt.Errorf("in internal/service/users.go/ResendVerification(): error while `s.db.GetUserByEmail()` calling: %w", err)
	}
	if !found {
		return models.ErrUserNotFound
	}
	if usr.Verify {
		return models.ErrAlreadyVerified
	}

	return s.sendVerification(ctx, usr.Email, usr.VerificationToken)
}

func (s *UserService) verificationLink(verificationToken string) string {
	return s.publicURL + verificationPath + verificationToken
}

func (s *UserService) sendVerification(ctx context.Context, email, verificationToken string) error {
	link := s.verificationLink(verificationToken)
	err := s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: verificationSubject,
		HTML:    `<a target="_blank" href="` + html.EscapeString(link) + `">Click to verify your email</a>`,
		Text:    "Open " + link + " to verify your email",
	})
	if err != nil {
		return fmt.Errorf("in internal/service/users.go/sendVerification(): error while `s.mail.Send()` calling: %w", err)
	}

	return nil
}
