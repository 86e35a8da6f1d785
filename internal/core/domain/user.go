package domain

import "time"

const (
	AccountAgronomist = "agronomist"
	AccountFarmer     = "farmer"
)

// Bounds of a single agronomist rating.
const (
	MinRating = 1
	MaxRating = 5
)

// User models a registered account of the Infield app.
type User struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	AccountType string   `json:"accountType"`
	Specialties []string `json:"specialties"`
	Regions     []string `json:"regions"`

	PhoneVerified bool `json:"phoneVerified"`

	// Security and internal fields. Never written by clients, never returned to them.
	PasswordHash           string    `json:"-"`
	Salt                   string    `json:"-"`
	EmailVerified          bool      `json:"-"`
	EmailVerificationToken string    `json:"-"`
	ResetPasswordToken     string    `json:"-"`
	ResetPasswordExpires   time.Time `json:"-"`
	PhoneVerificationToken string    `json:"-"`
	Rating                 float64   `json:"-"`
	RatingCount            int       `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAgronomist reports whether the user may hold skill tags.
func (u *User) IsAgronomist() bool {
	return u.AccountType == AccountAgronomist
}

// UserView is the client-safe projection of a User.
type UserView struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	AccountType   string    `json:"accountType"`
	PhoneVerified bool      `json:"phoneVerified"`
	Specialties   []string  `json:"specialties"`
	Regions       []string  `json:"regions"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ClientView returns the representation of u that is safe to send to API clients.
func (u *User) ClientView() UserView {
	return UserView{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		Email:         u.Email,
		AccountType:   u.AccountType,
		PhoneVerified: u.PhoneVerified,
		Specialties:   nonNil(u.Specialties),
		Regions:       nonNil(u.Regions),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserName is the projection returned by name search.
type UserName struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
