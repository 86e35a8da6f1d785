package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

const defaultVerificationCooldown = time.Minute

// protectedFields can never be set through EditSelf. Skill sets have their own
// operations; everything else is security state.
var protectedFields = []string{
	"emailVerified",
	"salt",
	"resetPasswordToken",
	"resetPasswordExpires",
	"emailVerificationToken",
	"specialties",
	"regions",
	"rating",
}

type editableField struct {
	rule string
	set  func(u *domain.User, v string)
}

var editableFields = map[string]editableField{
	"firstName":   {rule: "required,max=100", set: func(u *domain.User, v string) { u.FirstName = v }},
	"lastName":    {rule: "max=100", set: func(u *domain.User, v string) { u.LastName = v }},
	"phone":       {rule: "required,e164", set: func(u *domain.User, v string) { u.Phone = v }},
	"email":       {rule: "required,email", set: func(u *domain.User, v string) { u.Email = strings.ToLower(v) }},
	"accountType": {rule: "oneof=agronomist farmer", set: func(u *domain.User, v string) { u.AccountType = v }},
}

// ProfileService implements ports.ProfileService.
type ProfileService struct {
	repo     ports.UserRepository
	notifier ports.PhoneNotifier
	throttle ports.VerificationThrottle
	cooldown time.Duration
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewProfileService(
	repo ports.UserRepository,
	notifier ports.PhoneNotifier,
	throttle ports.VerificationThrottle,
	cooldown time.Duration,
	logger zerolog.Logger,
) *ProfileService {
	if cooldown <= 0 {
		cooldown = defaultVerificationCooldown
	}
	return &ProfileService{
		repo:     repo,
		notifier: notifier,
		throttle: throttle,
		cooldown: cooldown,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *ProfileService) GetSelf(current *domain.User) domain.UserView {
	return current.ClientView()
}

// EditSelf shallow-merges edits onto the current user. The request is rejected
// as a whole when any key is protected or not an editable profile field; a key
// counts as present whatever its value.
func (s *ProfileService) EditSelf(ctx context.Context, current *domain.User, edits map[string]any) (domain.UserView, error) {
	if len(edits) == 0 {
		return domain.UserView{}, domain.ErrNoData
	}

	for _, key := range protectedFields {
		if _, present := edits[key]; present {
			return domain.UserView{}, fmt.Errorf("%w: field %q cannot be updated", domain.ErrInvalidArgument, key)
		}
	}

	keys := make([]string, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updated := *current
	for _, key := range keys {
		field, ok := editableFields[key]
		if !ok {
			return domain.UserView{}, fmt.Errorf("%w: field %q cannot be updated", domain.ErrInvalidArgument, key)
		}
		value, ok := edits[key].(string)
		if !ok {
			return domain.UserView{}, fmt.Errorf("%w: field %q must be a string", domain.ErrInvalidArgument, key)
		}
		value = strings.TrimSpace(value)
		if err := s.validate.Var(value, field.rule); err != nil {
			return domain.UserView{}, fmt.Errorf("%w: field %q is not valid", domain.ErrInvalidArgument, key)
		}
		field.set(&updated, value)
	}

	// A new number has to be verified again.
	if updated.Phone != current.Phone {
		updated.PhoneVerified = false
		updated.PhoneVerificationToken = ""
	}
	// Skill sets only exist on agronomist accounts.
	if current.IsAgronomist() && !updated.IsAgronomist() {
		updated.Specialties = []string{}
		updated.Regions = []string{}
	}

	if err := s.save(ctx, &updated); err != nil {
		return domain.UserView{}, err
	}

	s.logger.Info().Str("user_id", updated.ID).Strs("fields", keys).Msg("profile updated")
	return updated.ClientView(), nil
}

// AddSkills merges specialties and regions into the user's sets.
func (s *ProfileService) AddSkills(ctx context.Context, current *domain.User, specialties, regions []string) (domain.UserView, error) {
	if !current.IsAgronomist() {
		return domain.UserView{}, fmt.Errorf("%w: you must have an agronomist account", domain.ErrNotAllowed)
	}
	if len(specialties) == 0 && len(regions) == 0 {
		return domain.UserView{}, fmt.Errorf("%w: no specialties or regions provided", domain.ErrNoData)
	}
	for _, sp := range specialties {
		if !domain.IsSpecialty(sp) {
			return domain.UserView{}, fmt.Errorf("%w: unknown specialty %q", domain.ErrInvalidArgument, sp)
		}
	}
	for _, r := range regions {
		if !domain.IsRegion(r) {
			return domain.UserView{}, fmt.Errorf("%w: unknown region %q", domain.ErrInvalidArgument, r)
		}
	}

	updated := *current
	updated.Specialties = domain.AddToSet(slices.Clone(current.Specialties), specialties...)
	updated.Regions = domain.AddToSet(slices.Clone(current.Regions), regions...)

	if err := s.save(ctx, &updated); err != nil {
		return domain.UserView{}, err
	}

	s.logger.Info().
		Str("user_id", updated.ID).
		Strs("specialties", updated.Specialties).
		Strs("regions", updated.Regions).
		Msg("skills added")
	return updated.ClientView(), nil
}

func (s *ProfileService) RemoveSpecialty(ctx context.Context, current *domain.User, specialty string) (domain.UserView, error) {
	if specialty == "" {
		return domain.UserView{}, fmt.Errorf("%w: no specialty provided", domain.ErrNoData)
	}
	updated := *current
	updated.Specialties = domain.RemoveFromSet(slices.Clone(current.Specialties), specialty)
	if err := s.save(ctx, &updated); err != nil {
		return domain.UserView{}, err
	}
	return updated.ClientView(), nil
}

func (s *ProfileService) RemoveRegion(ctx context.Context, current *domain.User, region string) (domain.UserView, error) {
	if region == "" {
		return domain.UserView{}, fmt.Errorf("%w: no region provided", domain.ErrNoData)
	}
	updated := *current
	updated.Regions = domain.RemoveFromSet(slices.Clone(current.Regions), region)
	if err := s.save(ctx, &updated); err != nil {
		return domain.UserView{}, err
	}
	return updated.ClientView(), nil
}

// DeleteSelf permanently removes the current user's document.
func (s *ProfileService) DeleteSelf(ctx context.Context, current *domain.User) error {
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", current.ID).Msg("failed to delete user")
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info().Str("user_id", current.ID).Msg("user deleted")
	return nil
}

func (s *ProfileService) AvailableSpecialties(current *domain.User) ([]string, error) {
	if !current.IsAgronomist() {
		return nil, fmt.Errorf("%w: you must have an agronomist account", domain.ErrNotAllowed)
	}
	return slices.Clone(domain.Specialties), nil
}

func (s *ProfileService) AvailableRegions(current *domain.User) ([]string, error) {
	if !current.IsAgronomist() {
		return nil, fmt.Errorf("%w: you must have an agronomist account", domain.ErrNotAllowed)
	}
	return slices.Clone(domain.Regions), nil
}

// RequestPhoneVerification stores a fresh code on the user and texts it to
// their phone. Requests inside the cooldown window are refused.
func (s *ProfileService) RequestPhoneVerification(ctx context.Context, current *domain.User) error {
	if current.Phone == "" {
		return fmt.Errorf("%w: no phone number on file", domain.ErrNoData)
	}
	if current.PhoneVerified {
		return fmt.Errorf("%w: phone already verified", domain.ErrInvalidArgument)
	}

	acquired, err := s.throttle.Acquire(ctx, current.ID, s.cooldown)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", current.ID).Msg("verification throttle unavailable, sending anyway")
	} else if !acquired {
		return fmt.Errorf("%w: verification code already sent, try again later", domain.ErrRateLimited)
	}

	code, err := verificationCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	updated := *current
	updated.PhoneVerificationToken = code
	if err := s.save(ctx, &updated); err != nil {
		s.releaseThrottle(ctx, current.ID)
		return err
	}

	sent, err := s.notifier.SendPhoneVerification(ctx, &updated)
	if err != nil {
		s.releaseThrottle(ctx, current.ID)
		s.logger.Error().Err(err).Str("user_id", current.ID).Msg("failed to send verification sms")
		return fmt.Errorf("send phone verification: %w", err)
	}

	s.logger.Info().Str("user_id", current.ID).Bool("sent", sent).Msg("phone verification requested")
	return nil
}

// ConfirmPhone marks the phone verified when code matches the stored token.
func (s *ProfileService) ConfirmPhone(ctx context.Context, current *domain.User, code string) (domain.UserView, error) {
	if code == "" {
		return domain.UserView{}, fmt.Errorf("%w: no verification code provided", domain.ErrNoData)
	}
	if current.PhoneVerificationToken == "" ||
		subtle.ConstantTimeCompare([]byte(code), []byte(current.PhoneVerificationToken)) != 1 {
		return domain.UserView{}, fmt.Errorf("%w: invalid verification code", domain.ErrInvalidArgument)
	}

	updated := *current
	updated.PhoneVerified = true
	updated.PhoneVerificationToken = ""
	if err := s.save(ctx, &updated); err != nil {
		return domain.UserView{}, err
	}

	s.logger.Info().Str("user_id", updated.ID).Msg("phone verified")
	return updated.ClientView(), nil
}

func (s *ProfileService) save(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to save user")
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *ProfileService) releaseThrottle(ctx context.Context, userID string) {
	if err := s.throttle.Release(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to release verification throttle")
	}
}

// verificationCode returns a random six digit code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
