package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

const collectionUsers = "users"

// emailCollation compares emails case-insensitively. The unique index and the
// login lookup must share it for the index to serve the query.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

// userDocument is the stored shape of a user. Field names follow the
// collection's existing camelCase schema.
type userDocument struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	FirstName              string             `bson:"firstName"`
	LastName               string             `bson:"lastName"`
	Phone                  string             `bson:"phone"`
	Email                  string             `bson:"email"`
	AccountType            string             `bson:"accountType"`
	Specialties            []string           `bson:"specialties"`
	Regions                []string           `bson:"regions"`
	PhoneVerified          bool               `bson:"phoneVerified"`
	PhoneVerificationToken string             `bson:"phoneVerificationToken,omitempty"`
	Password               string             `bson:"password"`
	Salt                   string             `bson:"salt,omitempty"`
	EmailVerified          bool               `bson:"emailVerified"`
	EmailVerificationToken string             `bson:"emailVerificationToken,omitempty"`
	ResetPasswordToken     string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires   *time.Time         `bson:"resetPasswordExpires,omitempty"`
	Rating                 float64            `bson:"rating"`
	RatingCount            int                `bson:"ratingCount"`
	CreatedAt              time.Time          `bson:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt"`
}

type nameDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, id)
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(&doc), nil
}

// Search returns id and names of users matching filter, in natural order.
func (r *UserRepository) Search(ctx context.Context, filter ports.UserSearch) ([]domain.UserName, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"firstName": 1, "lastName": 1})
	cur, err := r.col.Find(ctx, searchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	var docs []nameDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]domain.UserName, len(docs))
	for i, d := range docs {
		out[i] = domain.UserName{ID: d.ID.Hex(), FirstName: d.FirstName, LastName: d.LastName}
	}
	return out, nil
}

// searchFilter builds the case-insensitive substring match. Search terms are
// quoted so they never act as regular expressions.
func searchFilter(f ports.UserSearch) bson.M {
	filter := bson.M{"firstName": containsFold(f.FirstName)}
	if f.LastName != "" {
		filter["lastName"] = containsFold(f.LastName)
	}
	return filter
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// Save replaces the stored document, inserting it when missing. A user without
// an id gets a fresh ObjectID.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toDocument(user)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
		user.ID = doc.ID.Hex()
	}

	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email already in use", domain.ErrInvalidArgument)
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: user %q", domain.ErrNotFound, id)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) AddRating(ctx context.Context, id string, score int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: user %q", domain.ErrNotFound, id)
	}

	filter := bson.M{"_id": oid, "accountType": domain.AccountAgronomist}
	res, err := r.col.UpdateOne(ctx, filter, ratingUpdate(score))
	if err != nil {
		return fmt.Errorf("rate user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: agronomist not found", domain.ErrNotFound)
	}
	return nil
}

// ratingUpdate recomputes the running average server side:
// rating = (rating*ratingCount + score) / (ratingCount+1).
// Fields inside one $set stage all read the pre-update document.
func ratingUpdate(score int) mongo.Pipeline {
	count := bson.D{{Key: "$ifNull", Value: bson.A{"$ratingCount", 0}}}
	rating := bson.D{{Key: "$ifNull", Value: bson.A{"$rating", 0}}}
	nextCount := bson.D{{Key: "$add", Value: bson.A{count, 1}}}
	total := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$multiply", Value: bson.A{rating, count}}},
		score,
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: bson.D{{Key: "$divide", Value: bson.A{total, nextCount}}}},
			{Key: "ratingCount", Value: nextCount},
		}}},
	}
}

// EnsureIndexes creates the indexes login and search rely on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, userIndexes())
	return err
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(emailCollation),
		},
		{Keys: bson.D{{Key: "firstName", Value: 1}, {Key: "lastName", Value: 1}}},
	}
}

func toDocument(u *domain.User) (*userDocument, error) {
	doc := &userDocument{
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Phone:                  u.Phone,
		Email:                  u.Email,
		AccountType:            u.AccountType,
		Specialties:            nonNil(u.Specialties),
		Regions:                nonNil(u.Regions),
		PhoneVerified:          u.PhoneVerified,
		PhoneVerificationToken: u.PhoneVerificationToken,
		Password:               u.PasswordHash,
		Salt:                   u.Salt,
		EmailVerified:          u.EmailVerified,
		EmailVerificationToken: u.EmailVerificationToken,
		ResetPasswordToken:     u.ResetPasswordToken,
		Rating:                 u.Rating,
		RatingCount:            u.RatingCount,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
	if !u.ResetPasswordExpires.IsZero() {
		t := u.ResetPasswordExpires
		doc.ResetPasswordExpires = &t
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed user id %q", domain.ErrInvalidArgument, u.ID)
		}
		doc.ID = oid
	}
	return doc, nil
}

func toDomain(d *userDocument) *domain.User {
	u := &domain.User{
		ID:                     d.ID.Hex(),
		FirstName:              d.FirstName,
		LastName:               d.LastName,
		Phone:                  d.Phone,
		Email:                  d.Email,
		AccountType:            d.AccountType,
		Specialties:            d.Specialties,
		Regions:                d.Regions,
		PhoneVerified:          d.PhoneVerified,
		PhoneVerificationToken: d.PhoneVerificationToken,
		PasswordHash:           d.Password,
		Salt:                   d.Salt,
		EmailVerified:          d.EmailVerified,
		EmailVerificationToken: d.EmailVerificationToken,
		ResetPasswordToken:     d.ResetPasswordToken,
		Rating:                 d.Rating,
		RatingCount:            d.RatingCount,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
	if d.ResetPasswordExpires != nil {
		u.ResetPasswordExpires = d.ResetPasswordExpires.UTC()
	}
	return u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
