// Package mongodb implements the storage interface on top of a MongoDB
// database. Contacts and users live in the "contacts" and "users"
// collections; ids are exposed as hex encoded ObjectIDs.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

const (
	contactsCollection = "contacts"
	usersCollection    = "users"
)

// Emails compare case-insensitively both in the unique index and in lookups.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

type contactDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Phone     string        `bson:"phone"`
	Favorite  bool          `bson:"favorite"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (doc *contactDocument) toModel() *models.Contact {
	return &models.Contact{
		ID:       doc.ID.Hex(),
		Name:     doc.Name,
		Email:    doc.Email,
		Phone:    doc.Phone,
		Favorite: doc.Favorite,
	}
}

type userDocument struct {
	ID                bson.ObjectID `bson:"_id"`
	Email             string        `bson:"email"`
	Password          string        `bson:"password"`
	Subscription      string        `bson:"subscription"`
	AvatarURL         string        `bson:"avatarURL"`
	Token             *string       `bson:"token"`
	Verify            bool          `bson:"verify"`
	VerificationToken *string       `bson:"verificationToken"`
	CreatedAt         time.Time     `bson:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt"`
}

func (doc *userDocument) toModel() *user.User {
	return &user.User{
		ID:                doc.ID.Hex(),
		Email:             doc.Email,
		PasswordHash:      doc.Password,
		Subscription:      doc.Subscription,
		AvatarURL:         doc.AvatarURL,
		Token:             fromNullable(doc.Token),
		Verify:            doc.Verify,
		VerificationToken: fromNullable(doc.VerificationToken),
	}
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func fromNullable(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// MongoDB is a MongoDB-backed storage.
type MongoDB struct {
	client            *mongo.Client
	contacts          *mongo.Collection
	users             *mongo.Collection
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops both collections before the indexes are created.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to uri, checks the connection and makes sure the unique
// email index exists.
func New(
	ctx context.Context,
	uri string,
	databaseName string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*MongoDB, error) {
	initOpts := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(initOpts)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil,
			fmt.Errorf("in internal/db/mongodb/mongodb.go/New(): error while `mongo.Connect()` calling: %w", err)
	}

	database := client.Database(databaseName)
	result := &MongoDB{
		client:            client,
		contacts:          database.Collection(contactsCollection),
		users:             database.Collection(usersCollection),
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil,
			fmt.Errorf("in internal/db/mongodb/mongodb.go/New(): error while `result.Ping()` calling: %w", err)
	}

	if initOpts.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil,
				fmt.Errorf("in internal/db/mongodb/mongodb.go/New(): error while `result.resetDB()` calling: %w", err)
		}
	}

	_, err = result.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(emailCollation),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil,
			fmt.Errorf("in internal/db/mongodb/mongodb.go/New(): error while `Indexes().CreateOne()` calling: %w", err)
	}

	return result, nil
}

func (db *MongoDB) resetDB(ctx context.Context) error {
	if err := db.contacts.Drop(ctx); err != nil {
		return err
	}
	return db.users.Drop(ctx)
}

// ListContacts returns every contact in insertion order.
func (db *MongoDB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	cursor, err := db.contacts.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]models.Contact, 0, len(docs))
	for i := range docs {
		result = append(result, *docs[i].toModel())
	}

	return result, nil
}

// GetContactByID fetches a single contact. A malformed id is reported as absent.
func (db *MongoDB) GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, nil
	}

	var doc contactDocument
	err = db.contacts.FindOne(ctx, bson.D{{Key: "_id", Value: objectID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return doc.toModel(), true, nil
}

// CreateContact inserts a new contact document.
func (db *MongoDB) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	now := time.Now().UTC()
	doc := contactDocument{
		ID:        bson.NewObjectID(),
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Favorite:  contact.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.contacts.InsertOne(ctx, doc); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/mongodb/mongodb.go/CreateContact(): error while `db.contacts.InsertOne()` calling: %w",
				err,
			)
	}

	return doc.toModel(), nil
}

// UpdateContact replaces name, email and phone.
func (db *MongoDB) UpdateContact(
	ctx context.Context,
	id string,
	fields models.ContactRequest,
) (*models.Contact, bool, error) {
	return db.updateContact(ctx, id, bson.D{
		{Key: "name", Value: fields.Name},
		{Key: "email", Value: fields.Email},
		{Key: "phone", Value: fields.Phone},
	})
}

// UpdateContactFavorite sets only the favorite flag.
func (db *MongoDB) UpdateContactFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*models.Contact, bool, error) {
	return db.updateContact(ctx, id, bson.D{{Key: "favorite", Value: favorite}})
}

func (db *MongoDB) updateContact(ctx context.Context, id string, set bson.D) (*models.Contact, bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, nil
	}

	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})

	var doc contactDocument
	err = db.contacts.FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: objectID}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return doc.toModel(), true, nil
}

// RemoveContact deletes the contact and reports whether it existed.
func (db *MongoDB) RemoveContact(ctx context.Context, id string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := db.contacts.DeleteOne(ctx, bson.D{{Key: "_id", Value: objectID}})
	if err != nil {
		return false, err
	}

	return result.DeletedCount > 0, nil
}

func (db *MongoDB) CountContacts(ctx context.Context) (int64, error) {
	return db.contacts.CountDocuments(ctx, bson.D{})
}

// CreateUser inserts a new account. A taken email yields models.ErrDuplicateEmail.
func (db *MongoDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	subscription := usr.Subscription
	if subscription == "" {
		subscription = user.SubscriptionStarter
	}

	now := time.Now().UTC()
	doc := userDocument{
		ID:                bson.NewObjectID(),
		Email:             usr.Email,
		Password:          usr.PasswordHash,
		Subscription:      subscription,
		AvatarURL:         usr.AvatarURL,
		Token:             nullable(usr.Token),
		Verify:            usr.Verify,
		VerificationToken: nullable(usr.VerificationToken),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := db.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", models.ErrDuplicateEmail
		}
		return "", err
	}

	return doc.ID.Hex(), nil
}

func (db *MongoDB) GetUserByID(ctx context.Context, id string) (*user.User, bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, nil
	}

	return db.findUser(ctx, bson.D{{Key: "_id", Value: objectID}})
}

func (db *MongoDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return db.findUser(
		ctx,
		bson.D{{Key: "email", Value: email}},
		options.FindOne().SetCollation(emailCollation),
	)
}

func (db *MongoDB) GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	return db.findUser(ctx, bson.D{{Key: "verificationToken", Value: token}})
}

func (db *MongoDB) findUser(
	ctx context.Context,
	filter bson.D,
	opts ...options.Lister[options.FindOneOptions],
) (*user.User, bool, error) {
	var doc userDocument
	err := db.users.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return doc.toModel(), true, nil
}

// SetUserToken stores the bearer token, or null when token is empty.
func (db *MongoDB) SetUserToken(ctx context.Context, id, token string) error {
	return db.updateUser(ctx, id, bson.D{{Key: "token", Value: nullable(token)}})
}

func (db *MongoDB) SetUserAvatarURL(ctx context.Context, id, avatarURL string) error {
	return db.updateUser(ctx, id, bson.D{{Key: "avatarURL", Value: avatarURL}})
}

func (db *MongoDB) MarkUserVerified(ctx context.Context, id string) error {
	return db.updateUser(ctx, id, bson.D{
		{Key: "verify", Value: true},
		{Key: "verificationToken", Value: nil},
	})
}

func (db *MongoDB) updateUser(ctx context.Context, id string, set bson.D) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrUserNotFound
	}

	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})

	result, err := db.users.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: objectID}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("in internal/db/mongodb/mongodb.go/updateUser(): error while `db.users.UpdateOne()` calling: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

func (db *MongoDB) CountUsers(ctx context.Context) (int64, error) {
	return db.users.CountDocuments(ctx, bson.D{})
}

// Ping checks the primary is reachable within the configured timeout.
func (db *MongoDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.client.Ping(ctxWithTimeout, readpref.Primary())
}

// Close disconnects the client.
func (db *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.connectionTimeout)
	defer cancel()

	return db.client.Disconnect(ctx)
}
