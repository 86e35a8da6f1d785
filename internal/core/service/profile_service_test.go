package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	order     []string
	saves     int
	saveErr   error
	deleteErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.put(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Specialties = append([]string(nil), u.Specialties...)
	clone.Regions = append([]string(nil), u.Regions...)
	return &clone
}

func (r *stubUserRepo) put(u *domain.User) {
	if _, ok := r.users[u.ID]; !ok {
		r.order = append(r.order, u.ID)
	}
	r.users[u.ID] = cloneUser(u)
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, id := range r.order {
		if u, ok := r.users[id]; ok && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Search applies the same matching the Mongo regex filter does.
func (r *stubUserRepo) Search(_ context.Context, f ports.UserSearch) ([]domain.UserName, error) {
	out := []domain.UserName{}
	for _, id := range r.order {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(u.FirstName), strings.ToLower(f.FirstName)) {
			continue
		}
		if f.LastName != "" && !strings.Contains(strings.ToLower(u.LastName), strings.ToLower(f.LastName)) {
			continue
		}
		out = append(out, domain.UserName{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName})
	}
	return out, nil
}

func (r *stubUserRepo) Save(_ context.Context, u *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.put(u)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) AddRating(_ context.Context, id string, score int) error {
	u, ok := r.users[id]
	if !ok || !u.IsAgronomist() {
		return domain.ErrNotFound
	}
	u.Rating = (u.Rating*float64(u.RatingCount) + float64(score)) / float64(u.RatingCount+1)
	u.RatingCount++
	return nil
}

type stubNotifier struct {
	calls int
	last  *domain.User
	err   error
}

func (n *stubNotifier) SendPhoneVerification(_ context.Context, u *domain.User) (bool, error) {
	n.calls++
	n.last = cloneUser(u)
	if n.err != nil {
		return false, n.err
	}
	return true, nil
}

type stubThrottle struct {
	held     map[string]bool
	err      error
	released int
}

func newStubThrottle() *stubThrottle { return &stubThrottle{held: make(map[string]bool)} }

func (t *stubThrottle) Acquire(_ context.Context, userID string, _ time.Duration) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	if t.held[userID] {
		return false, nil
	}
	t.held[userID] = true
	return true, nil
}

func (t *stubThrottle) Release(_ context.Context, userID string) error {
	t.released++
	delete(t.held, userID)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func agronomist() *domain.User {
	return &domain.User{
		ID:          "u1",
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "+14165550100",
		Email:       "jane@example.com",
		AccountType: domain.AccountAgronomist,
		Specialties: []string{"corn"},
		Regions:     []string{"ON"},
		Salt:        "pepper",
		Rating:      4.5,
	}
}

func farmer() *domain.User {
	u := agronomist()
	u.ID = "u2"
	u.AccountType = domain.AccountFarmer
	u.Specialties = nil
	u.Regions = nil
	return u
}

func newProfileService(repo *stubUserRepo) (*ProfileService, *stubNotifier, *stubThrottle) {
	n := &stubNotifier{}
	th := newStubThrottle()
	return NewProfileService(repo, n, th, time.Minute, discardLogger), n, th
}

// ---------------------------------------------------------------------------
// EditSelf
// ---------------------------------------------------------------------------

func TestProfileService_EditSelf_NoData(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)

	_, err := svc.EditSelf(context.Background(), agronomist(), nil)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = svc.EditSelf(context.Background(), agronomist(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrNoData)
	assert.Zero(t, repo.saves)
}

func TestProfileService_EditSelf_RejectsProtectedFields(t *testing.T) {
	for _, field := range protectedFields {
		for _, value := range []any{0, "", false, nil, "x", 5, true} {
			repo := newStubUserRepo(agronomist())
			svc, _, _ := newProfileService(repo)

			edits := map[string]any{"firstName": "Janet", field: value}
			_, err := svc.EditSelf(context.Background(), agronomist(), edits)

			require.ErrorIs(t, err, domain.ErrInvalidArgument, "field %s value %v", field, value)
			assert.Zero(t, repo.saves, "field %s value %v persisted", field, value)
			assert.Equal(t, "Jane", repo.users["u1"].FirstName)
		}
	}
}

func TestProfileService_EditSelf_RejectsNonProfileFields(t *testing.T) {
	for _, field := range []string{"id", "password", "phoneVerified", "phoneVerificationToken", "nickname"} {
		repo := newStubUserRepo(agronomist())
		svc, _, _ := newProfileService(repo)

		_, err := svc.EditSelf(context.Background(), agronomist(), map[string]any{field: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, field)
		assert.Zero(t, repo.saves)
	}
}

func TestProfileService_EditSelf_RejectsInvalidValues(t *testing.T) {
	cases := []map[string]any{
		{"email": "not-an-email"},
		{"phone": "555"},
		{"accountType": "admin"},
		{"firstName": ""},
		{"firstName": 42},
	}
	for _, edits := range cases {
		repo := newStubUserRepo(agronomist())
		svc, _, _ := newProfileService(repo)

		_, err := svc.EditSelf(context.Background(), agronomist(), edits)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "%v", edits)
		assert.Zero(t, repo.saves)
	}
}

func TestProfileService_EditSelf_MergesSubmittedFieldsOnly(t *testing.T) {
	before := agronomist()
	repo := newStubUserRepo(before)
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), agronomist(), map[string]any{
		"lastName": "Smith",
		"email":    "jane.smith@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Smith", view.LastName)
	assert.Equal(t, "jane.smith@example.com", view.Email)

	stored := repo.users["u1"]
	assert.False(t, stored.UpdatedAt.IsZero())

	expected := cloneUser(before)
	expected.LastName = "Smith"
	expected.Email = "jane.smith@example.com"
	expected.UpdatedAt = stored.UpdatedAt
	assert.Equal(t, expected, stored)
}

func TestProfileService_EditSelf_SaveError(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	repo.saveErr = errors.New("mongo down")
	svc, _, _ := newProfileService(repo)

	_, err := svc.EditSelf(context.Background(), agronomist(), map[string]any{"firstName": "Janet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo down")
}

func TestProfileService_EditSelf_LeavingAgronomistClearsSkills(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), agronomist(), map[string]any{"accountType": "farmer"})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountFarmer, view.AccountType)
	assert.Empty(t, view.Specialties)
	assert.Empty(t, view.Regions)

	stored := repo.users["u1"]
	assert.Empty(t, stored.Specialties)
	assert.Empty(t, stored.Regions)
	assert.Equal(t, 1, repo.saves)
}

func TestProfileService_EditSelf_AgronomistKeepsSkills(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), agronomist(), map[string]any{"accountType": "agronomist"})
	require.NoError(t, err)
	assert.Equal(t, []string{"corn"}, view.Specialties)
	assert.Equal(t, []string{"ON"}, view.Regions)
}

func TestProfileService_EditSelf_NewPhoneNeedsVerification(t *testing.T) {
	current := agronomist()
	current.PhoneVerified = true
	current.PhoneVerificationToken = "123456"
	repo := newStubUserRepo(current)
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), cloneUser(current), map[string]any{"phone": "+14165559999"})
	require.NoError(t, err)
	assert.Equal(t, "+14165559999", view.Phone)
	assert.False(t, view.PhoneVerified)

	stored := repo.users["u1"]
	assert.False(t, stored.PhoneVerified)
	assert.Empty(t, stored.PhoneVerificationToken)
}

func TestProfileService_EditSelf_SamePhoneStaysVerified(t *testing.T) {
	current := agronomist()
	current.PhoneVerified = true
	repo := newStubUserRepo(current)
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), cloneUser(current), map[string]any{"phone": current.Phone})
	require.NoError(t, err)
	assert.True(t, view.PhoneVerified)
}

func TestProfileService_EditSelf_EmailStoredLowercaseAndLoginWorks(t *testing.T) {
	current := userWithPassword(t, "pw")
	repo := newStubUserRepo(current)
	svc, _, _ := newProfileService(repo)

	view, err := svc.EditSelf(context.Background(), cloneUser(current), map[string]any{"email": "Jane.New@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "jane.new@example.com", view.Email)
	assert.Equal(t, "jane.new@example.com", repo.users["u1"].Email)

	auth := NewAuthService(repo, "secret", time.Hour)
	_, user, err := auth.Login(context.Background(), "Jane.New@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

// ---------------------------------------------------------------------------
// Skills
// ---------------------------------------------------------------------------

func TestProfileService_AddSkills_UnionAndIdempotent(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)

	view, err := svc.AddSkills(context.Background(), agronomist(), []string{"wheat", "corn", "wheat"}, []string{"BC", "ON"})
	require.NoError(t, err)
	assert.Equal(t, []string{"corn", "wheat"}, view.Specialties)
	assert.Equal(t, []string{"ON", "BC"}, view.Regions)

	again, err := svc.AddSkills(context.Background(), repo.users["u1"], []string{"wheat", "corn", "wheat"}, []string{"BC", "ON"})
	require.NoError(t, err)
	assert.Equal(t, view.Specialties, again.Specialties)
	assert.Equal(t, view.Regions, again.Regions)
}

func TestProfileService_AddSkills_DoesNotMutateInput(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)

	current := agronomist()
	_, err := svc.AddSkills(context.Background(), current, []string{"barley"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"corn"}, current.Specialties)
}

func TestProfileService_AddSkills_Rejections(t *testing.T) {
	repo := newStubUserRepo(agronomist(), farmer())
	svc, _, _ := newProfileService(repo)
	ctx := context.Background()

	_, err := svc.AddSkills(ctx, farmer(), []string{"corn"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	_, err = svc.AddSkills(ctx, agronomist(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = svc.AddSkills(ctx, agronomist(), []string{"soy"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.AddSkills(ctx, agronomist(), nil, []string{"XX"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Zero(t, repo.saves)
}

func TestProfileService_RemoveSpecialtyAndRegion(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)
	ctx := context.Background()

	view, err := svc.RemoveSpecialty(ctx, agronomist(), "corn")
	require.NoError(t, err)
	assert.Empty(t, view.Specialties)

	view, err = svc.RemoveRegion(ctx, agronomist(), "ON")
	require.NoError(t, err)
	assert.Empty(t, view.Regions)
}

func TestProfileService_RemoveAbsentValueIsNoop(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)
	ctx := context.Background()

	view, err := svc.RemoveSpecialty(ctx, agronomist(), "barley")
	require.NoError(t, err)
	assert.Equal(t, []string{"corn"}, view.Specialties)

	view, err = svc.RemoveRegion(ctx, agronomist(), "QC")
	require.NoError(t, err)
	assert.Equal(t, []string{"ON"}, view.Regions)

	_, err = svc.RemoveRegion(ctx, agronomist(), "")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestProfileService_AvailableVocabularies(t *testing.T) {
	svc, _, _ := newProfileService(newStubUserRepo())

	_, err := svc.AvailableSpecialties(farmer())
	assert.ErrorIs(t, err, domain.ErrNotAllowed)
	_, err = svc.AvailableRegions(farmer())
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	specialties, err := svc.AvailableSpecialties(agronomist())
	require.NoError(t, err)
	assert.Equal(t, []string{"corn", "barley", "wheat"}, specialties)

	regions, err := svc.AvailableRegions(agronomist())
	require.NoError(t, err)
	assert.Len(t, regions, 13)

	seen := map[string]bool{}
	for _, r := range regions {
		assert.False(t, seen[r], "duplicate region %s", r)
		seen[r] = true
	}
}

// ---------------------------------------------------------------------------
// DeleteSelf
// ---------------------------------------------------------------------------

func TestProfileService_DeleteSelf_ThenGetUserNotFound(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, _, _ := newProfileService(repo)
	dir := NewDirectoryService(repo, discardLogger)

	require.NoError(t, svc.DeleteSelf(context.Background(), agronomist()))

	_, err := dir.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Phone verification
// ---------------------------------------------------------------------------

func TestProfileService_RequestPhoneVerification(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, notifier, _ := newProfileService(repo)

	require.NoError(t, svc.RequestPhoneVerification(context.Background(), agronomist()))

	require.Equal(t, 1, notifier.calls)
	code := repo.users["u1"].PhoneVerificationToken
	assert.Len(t, code, 6)
	assert.Equal(t, code, notifier.last.PhoneVerificationToken)

	err := svc.RequestPhoneVerification(context.Background(), repo.users["u1"])
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, notifier.calls)
}

func TestProfileService_RequestPhoneVerification_SendFailureReleasesThrottle(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, notifier, throttle := newProfileService(repo)
	notifier.err = errors.New("twilio: 503")

	err := svc.RequestPhoneVerification(context.Background(), agronomist())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio: 503")
	assert.Equal(t, 1, throttle.released)
	assert.False(t, throttle.held["u1"])
}

func TestProfileService_RequestPhoneVerification_ThrottleDownStillSends(t *testing.T) {
	repo := newStubUserRepo(agronomist())
	svc, notifier, throttle := newProfileService(repo)
	throttle.err = errors.New("redis down")

	require.NoError(t, svc.RequestPhoneVerification(context.Background(), agronomist()))
	assert.Equal(t, 1, notifier.calls)
}

func TestProfileService_ConfirmPhone(t *testing.T) {
	user := agronomist()
	user.PhoneVerificationToken = "123456"
	repo := newStubUserRepo(user)
	svc, _, _ := newProfileService(repo)
	ctx := context.Background()

	_, err := svc.ConfirmPhone(ctx, cloneUser(user), "654321")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ConfirmPhone(ctx, cloneUser(user), "")
	assert.ErrorIs(t, err, domain.ErrNoData)

	view, err := svc.ConfirmPhone(ctx, cloneUser(user), "123456")
	require.NoError(t, err)
	assert.True(t, view.PhoneVerified)
	assert.Empty(t, repo.users["u1"].PhoneVerificationToken)
}
