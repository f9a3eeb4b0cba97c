// Package account manages user identity, sessions and profiles.
package account

import (
	"time"
)

// User is the public profile of an account, as exposed to clients.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	EducationMajor string    `json:"educationMajor"`
	JoinedDate     time.Time `json:"joinedDate"`
}

// userRecord is the stored shape of a user document. The password hash
// never leaves this package.
type userRecord struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"passwordHash"`
	Name           string    `json:"name"`
	EducationMajor string    `json:"educationMajor"`
	JoinedDate     time.Time `json:"joinedDate"`
}

func (record userRecord) user() User {
	return User{
		ID:             record.ID,
		Email:          record.Email,
		Name:           record.Name,
		EducationMajor: record.EducationMajor,
		JoinedDate:     record.JoinedDate,
	}
}
