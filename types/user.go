package types

import "time"

// User is an account. Email is the login key and is stored lower-case, as is Username. Email is left out of the
// JSON form of a user since users show up on public pages; use Account where the address may be shown.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"-" gorm:"size:254;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:200"`
	Bio          string    `json:"bio" gorm:"type:text"`
	Avatar       string    `json:"avatar"` // blob reference, empty means the default avatar
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Is reports whether u and other denote the same account. A nil user (anonymous) is nobody.
func (u *User) Is(other *User) bool {
	return u != nil && other != nil && u.ID != 0 && u.ID == other.ID
}

// Account is the JSON view of a user including the email address, for the user themselves and for administration.
type Account struct {
	*User
	Email string `json:"email"`
}

// Account returns the account view of u, nil for a nil user.
func (u *User) Account() *Account {
	if u == nil {
		return nil
	}
	return &Account{User: u, Email: u.Email}
}
