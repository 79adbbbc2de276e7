package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is the caller identity attached to every request. Guests carry
// only a contact email; ownership checks key off OwnerKey either way.
type Principal struct {
	UserID string
	Email  string
	Guest  bool
}

func UserPrincipal(u User) Principal {
	return Principal{UserID: u.ID, Email: u.Email}
}

func GuestPrincipal(email string) Principal {
	return Principal{Email: email, Guest: true}
}

// OwnerKey is the value stored in owning-user columns. Guest records are
// keyed by the supplied email, matching how they were created.
func (p Principal) OwnerKey() string {
	if p.Guest {
		return p.Email
	}
	return p.UserID
}
