package auth

import "time"

type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	AffiliateCode string
	// ReferredBy is set once at registration and never changes afterwards.
	ReferredBy *string
	CreatedAt  time.Time
}

type CreateUserParams struct {
	Name          string
	Email         string
	PasswordHash  string
	AffiliateCode string
	ReferredBy    *string
}
