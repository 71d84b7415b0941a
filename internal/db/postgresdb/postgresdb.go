// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for contacts and user accounts. The schema is managed by goose
// migrations applied in New.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table of the public schema before migrating.
// Intended for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New opens the connection pool and runs the migrations found in migrationsDir.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

// isID reports whether id can be compared with a UUID column.
// Anything else can never match a row.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const contactColumns = `id, name, email, phone, favorite`

func scanContact(row interface{ Scan(dest ...any) error }) (*models.Contact, error) {
	contact := &models.Contact{}
	err := row.Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Phone, &contact.Favorite)
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// ListContacts returns every contact in creation order.
func (db *PostgresDB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contact)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetContactByID fetches a single contact.
func (db *PostgresDB) GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error) {
	if !isID(id) {
		return nil, false, nil
	}

	return db.contactFromRow(
		db.database.QueryRowContext(
			ctx,
			`SELECT `+contactColumns+` FROM contacts WHERE id = $1`,
			id,
		),
	)
}

// CreateContact inserts the contact with a fresh id and favorite=false.
func (db *PostgresDB) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	created, _, err := db.contactFromRow(
		db.database.QueryRowContext(
			ctx,
			`
				INSERT INTO contacts (id, name, email, phone, favorite)
					VALUES ($1, $2, $3, $4, $5)
					RETURNING `+contactColumns,
			uuid.New().String(),
			contact.Name,
			contact.Email,
			contact.Phone,
			contact.Favorite,
		),
	)
	if err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/CreateContact(): error while `db.contactFromRow()` calling: %w",
				err,
			)
	}

	return created, nil
}

// UpdateContact replaces name, email and phone; favorite is left as is.
func (db *PostgresDB) UpdateContact(
	ctx context.Context,
	id string,
	fields models.ContactRequest,
) (*models.Contact, bool, error) {
	if !isID(id) {
		return nil, false, nil
	}

	return db.contactFromRow(
		db.database.QueryRowContext(
			ctx,
			`
				UPDATE contacts
					SET name = $2, email = $3, phone = $4
					WHERE id = $1
					RETURNING `+contactColumns,
			id,
			fields.Name,
			fields.Email,
			fields.Phone,
		),
	)
}

// UpdateContactFavorite sets only the favorite flag.
func (db *PostgresDB) UpdateContactFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*models.Contact, bool, error) {
	if !isID(id) {
		return nil, false, nil
	}

	return db.contactFromRow(
		db.database.QueryRowContext(
			ctx,
			`UPDATE contacts SET favorite = $2 WHERE id = $1 RETURNING `+contactColumns,
			id,
			favorite,
		),
	)
}

// RemoveContact deletes the contact and reports whether it existed.
func (db *PostgresDB) RemoveContact(ctx context.Context, id string) (bool, error) {
	if !isID(id) {
		return false, nil
	}

	result, err := db.database.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CountContacts returns the size of the contacts table.
func (db *PostgresDB) CountContacts(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM contacts`)
}

func (db *PostgresDB) contactFromRow(row *sql.Row) (*models.Contact, bool, error) {
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return contact, true, nil
}

const userColumns = `id, email, password_hash, subscription, avatar_url,
	COALESCE(token, ''), verify, COALESCE(verification_token, '')`

func (db *PostgresDB) userFromRow(row *sql.Row) (*user.User, bool, error) {
	usr := &user.User{}
	err := row.Scan(
		&usr.ID,
		&usr.Email,
		&usr.PasswordHash,
		&usr.Subscription,
		&usr.AvatarURL,
		&usr.Token,
		&usr.Verify,
		&usr.VerificationToken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// CreateUser inserts a new account. A taken email yields models.ErrDuplicateEmail.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	subscription := usr.Subscription
	if subscription == "" {
		subscription = user.SubscriptionStarter
	}

	var userIDFromDB string
	err := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO users (id, email, password_hash, subscription, avatar_url, token, verify, verification_token)
				VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''))
				RETURNING id
		`,
		uuid.New().String(),
		usr.Email,
		usr.PasswordHash,
		subscription,
		usr.AvatarURL,
		usr.Token,
		usr.Verify,
		usr.VerificationToken,
	).Scan(&userIDFromDB)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", models.ErrDuplicateEmail
		}
		return "", err
	}

	return userIDFromDB, nil
}

// GetUserByID fetches an account by its UUID.
func (db *PostgresDB) GetUserByID(ctx context.Context, id string) (*user.User, bool, error) {
	if !isID(id) {
		return nil, false, nil
	}

	return db.userFromRow(
		db.database.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id),
	)
}

// GetUserByEmail fetches an account by email, case-insensitively.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return db.userFromRow(
		db.database.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email),
	)
}

// GetUserByVerificationToken fetches the account still waiting for this token.
func (db *PostgresDB) GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	return db.userFromRow(
		db.database.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token),
	)
}

// SetUserToken stores the bearer token, or NULL when token is empty.
func (db *PostgresDB) SetUserToken(ctx context.Context, id, token string) error {
	return db.updateUser(ctx, `UPDATE users SET token = NULLIF($2, '') WHERE id = $1`, id, token)
}

// SetUserAvatarURL points the account to a new avatar.
func (db *PostgresDB) SetUserAvatarURL(ctx context.Context, id, avatarURL string) error {
	return db.updateUser(ctx, `UPDATE users SET avatar_url = $2 WHERE id = $1`, id, avatarURL)
}

// MarkUserVerified flips verify and drops the verification token.
func (db *PostgresDB) MarkUserVerified(ctx context.Context, id string) error {
	return db.updateUser(ctx, `UPDATE users SET verify = TRUE, verification_token = NULL WHERE id = $1`, id)
}

func (db *PostgresDB) updateUser(ctx context.Context, query string, id string, args ...any) error {
	if !isID(id) {
		return models.ErrUserNotFound
	}

	result, err := db.database.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// CountUsers returns the number of registered accounts.
func (db *PostgresDB) CountUsers(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (db *PostgresDB) count(ctx context.Context, query string) (int64, error) {
	var result int64
	if err := db.database.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
