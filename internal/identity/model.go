package identity

import "time"

// User is a registered credential holder. Phone is the identity key and never
// changes after registration.
type User struct {
	ID           string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Summary is the public view of a user returned after registration.
type Summary struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
}

// Summary strips credential material from the user.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, PhoneNumber: u.Phone}
}

// Credentials carries a phone number and plaintext password for register and login.
type Credentials struct {
	Phone    string
	Password string
}
