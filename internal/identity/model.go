package identity

import (
	"strconv"
	"time"
)

// User represents a registered wallet owner.
type User struct {
	ID           int64
	Phone        string
	Name         string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
}

// Credentials is the phone/password pair submitted at sign-in.
type Credentials struct {
	Phone    string `json:"phone" form:"phone" validate:"required,len=10,number"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

// Identity is the minimal view of a user handed to the session layer. The
// phone number stands in for the email slot.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the session-facing view of the user.
func (u User) Identity() Identity {
	return Identity{ID: strconv.FormatInt(u.ID, 10), Name: u.Name, Email: u.Phone}
}
