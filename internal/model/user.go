// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered user account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) for consistency with Schedule ownership and to
// avoid tying our primary keys to a third-party's numbering scheme.
//
// WHY ONE CANONICAL ID TYPE?
// Every reference to a user inside the app — schedule.created_by, an
// availability row, a comment row, the JWT subject — carries the internal
// string ID. The GitHub numeric ID exists only at the OAuth boundary.
// Ownership checks are therefore plain string comparisons; there is never a
// string-vs-integer coercion to get wrong.
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large GitHub account numbers. The UNIQUE constraint on github_id in the
// DB ensures one GitHub account maps to exactly one app account.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID
	Username  string    `json:"username"  db:"username"`  // GitHub login, shown on grid rows
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
