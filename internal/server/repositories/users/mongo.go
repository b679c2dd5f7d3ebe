package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding user documents.
const CollectionName = "users"

type userDocument struct {
	ID               string     `bson:"_id"`
	Name             string     `bson:"name"`
	Email            string     `bson:"email"`
	PasswordHash     string     `bson:"passwordHash"`
	Role             string     `bson:"role"`
	AvatarURL        string     `bson:"avatarUrl,omitempty"`
	ResetTokenHash   *string    `bson:"resetTokenHash,omitempty"`
	ResetTokenExpiry *time.Time `bson:"resetTokenExpiry,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
}

func toDocument(u *models.User) userDocument {
	return userDocument{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		AvatarURL:        u.AvatarURL,
		ResetTokenHash:   u.ResetTokenHash,
		ResetTokenExpiry: u.ResetTokenExpiry,
		CreatedAt:        u.CreatedAt,
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Role:             models.Role(d.Role),
		AvatarURL:        d.AvatarURL,
		ResetTokenHash:   d.ResetTokenHash,
		ResetTokenExpiry: d.ResetTokenExpiry,
		CreatedAt:        d.CreatedAt,
	}
}

// MongoRepository stores users as documents. Email uniqueness relies on the
// unique index created by EnsureIndexes.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique email index and the sparse reset digest index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "resetTokenHash", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_token_hash"),
		},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.coll.InsertOne(ctx, toDocument(user)); err != nil {
		return nil, mapMongoError(err)
	}
	return user, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *MongoRepository) findAndUpdate(ctx context.Context, filter, update bson.D) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) updateByID(ctx context.Context, id string, update bson.D) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	set := bson.D{}
	for _, f := range []struct {
		key   string
		value *string
	}{
		{"name", patch.Name},
		{"email", patch.Email},
		{"avatarUrl", patch.AvatarURL},
		{"passwordHash", patch.PasswordHash},
	} {
		if f.value != nil {
			set = append(set, bson.E{Key: f.key, Value: *f.value})
		}
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	return r.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "passwordHash", Value: passwordHash}}}})
}

func (r *MongoRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.updateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: string(role)}}}})
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	return r.updateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "resetTokenHash", Value: tokenHash},
		{Key: "resetTokenExpiry", Value: expiry},
	}}})
}

var unsetReset = bson.D{{Key: "$unset", Value: bson.D{
	{Key: "resetTokenHash", Value: ""},
	{Key: "resetTokenExpiry", Value: ""},
}}}

func (r *MongoRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, unsetReset)
}

func resetFilter(tokenHash string, now time.Time) bson.D {
	return bson.D{
		{Key: "resetTokenHash", Value: tokenHash},
		{Key: "resetTokenExpiry", Value: bson.D{{Key: "$gt", Value: now}}},
	}
}

func (r *MongoRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, resetFilter(tokenHash, now))
}

// ConsumeResetToken relies on single-document atomicity of findAndModify:
// the filter and the $unset are evaluated against the same document version.
func (r *MongoRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "passwordHash", Value: passwordHash}}},
		unsetReset[0],
	}
	return r.findAndUpdate(ctx, resetFilter(tokenHash, now), update)
}

func mapMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrorNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}
