package user

import "strings"

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

// User is the persisted account record. Password holds a bcrypt hash, never plaintext.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role"`
	Avatar      string `json:"avatar,omitempty"`
	Location    string `json:"location,omitempty"`
}

// ProfileUpdate is a partial User; nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	Avatar      *string
	Location    *string
}

func (u User) Apply(p ProfileUpdate) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	return u
}

// SplitIdentifier classifies a signup identifier: anything containing "@" is
// an email, everything else a phone number.
func SplitIdentifier(identifier string) (email, phone string) {
	id := strings.TrimSpace(identifier)
	if strings.Contains(id, "@") {
		return id, ""
	}
	return "", id
}

// NormalizeIdentifier is the form login compares against.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// MatchesIdentifier reports whether a normalized identifier selects u:
// case-insensitive on email, exact on phone number.
func (u User) MatchesIdentifier(normalized string) bool {
	if normalized == "" {
		return false
	}
	if u.Email != "" && strings.ToLower(u.Email) == normalized {
		return true
	}
	return u.PhoneNumber != "" && u.PhoneNumber == normalized
}
