package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

func TestSearchFilter_FirstNameOnly(t *testing.T) {
	f := searchFilter(ports.UserSearch{FirstName: "Jane"})

	assert.Equal(t, bson.M{"firstName": primitive.Regex{Pattern: "Jane", Options: "i"}}, f)
}

func TestSearchFilter_FirstAndLastName(t *testing.T) {
	f := searchFilter(ports.UserSearch{FirstName: "Jane", LastName: "Doe"})

	assert.Equal(t, primitive.Regex{Pattern: "Jane", Options: "i"}, f["firstName"])
	assert.Equal(t, primitive.Regex{Pattern: "Doe", Options: "i"}, f["lastName"])
}

func TestSearchFilter_QuotesMetacharacters(t *testing.T) {
	f := searchFilter(ports.UserSearch{FirstName: "J.*", LastName: "(Doe"})

	assert.Equal(t, `J\.\*`, f["firstName"].(primitive.Regex).Pattern)
	assert.Equal(t, `\(Doe`, f["lastName"].(primitive.Regex).Pattern)
}

func TestDocumentRoundTrip(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &domain.User{
		ID:                   primitive.NewObjectID().Hex(),
		FirstName:            "Jane",
		AccountType:          domain.AccountAgronomist,
		Specialties:          []string{"corn"},
		Regions:              []string{"ON"},
		PasswordHash:         "hash",
		Salt:                 "salt",
		ResetPasswordExpires: expires,
		Rating:               4,
		RatingCount:          3,
	}

	doc, err := toDocument(in)
	require.NoError(t, err)
	assert.Equal(t, in, toDomain(doc))
}

func TestToDocument_RejectsMalformedID(t *testing.T) {
	_, err := toDocument(&domain.User{ID: "not-hex"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestToDocument_NilSetsStoredAsEmpty(t *testing.T) {
	doc, err := toDocument(&domain.User{})
	require.NoError(t, err)
	assert.NotNil(t, doc.Specialties)
	assert.NotNil(t, doc.Regions)
	assert.Nil(t, doc.ResetPasswordExpires)
}

func TestUserIndexes_EmailUniqueIgnoresCase(t *testing.T) {
	idx := userIndexes()
	require.Len(t, idx, 2)

	email := idx[0]
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, email.Keys)
	require.NotNil(t, email.Options.Unique)
	assert.True(t, *email.Options.Unique)
	require.NotNil(t, email.Options.Collation)
	assert.Equal(t, 2, email.Options.Collation.Strength)
}

func TestRatingUpdate_AveragesInOneStage(t *testing.T) {
	p := ratingUpdate(5)
	require.Len(t, p, 1)

	stage := p[0]
	require.Len(t, stage, 1)
	assert.Equal(t, "$set", stage[0].Key)

	set, ok := stage[0].Value.(bson.D)
	require.True(t, ok)
	require.Len(t, set, 2)
	assert.Equal(t, "rating", set[0].Key)
	assert.Equal(t, "ratingCount", set[1].Key)

	rating := set[0].Value.(bson.D)
	assert.Equal(t, "$divide", rating[0].Key)
	args := rating[0].Value.(bson.A)
	sum := args[0].(bson.D)[0].Value.(bson.A)
	assert.Equal(t, 5, sum[1])
}
