// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Two identifiers on purpose:
//   - ID is the surrogate numeric key (auto-increment, never used in URLs)
//   - UserID is the public handle (unique, 3–50 chars) that tweets, replies
//     and interactions reference. Sessions carry the handle, not the rowid.
//
// WHY POINTER FIELDS FOR THE PROFILE?
// phone_number, birthday etc. are nullable in the schema and optional in the
// registration payload. A *string distinguishes "not provided" (nil → null in
// JSON) from "provided but empty" — an empty-string zero value can't.
type User struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"e_mail"`
	PasswordHash     string    `json:"-"` // never serialized
	UserName         string    `json:"user_name"`
	PhoneNumber      *string   `json:"phone_number"`
	SelfIntroduction *string   `json:"self_introduction"`
	Place            *string   `json:"place"`
	Birthday         *string   `json:"birthday"` // YYYY-MM-DD
	ProfileImg       *string   `json:"profile_img"`
	AvatarImg        *string   `json:"avatar_img"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
