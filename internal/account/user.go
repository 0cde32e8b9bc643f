// Package account holds the customer account model. Accounts are validated
// but not exposed over HTTP.
package account

import "time"

const RoleCustomer = "customer"

type Address struct {
	Street     string `json:"street" bson:"street" validate:"notblank"`
	City       string `json:"city" bson:"city" validate:"notblank"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code" bson:"postal_code" validate:"notblank"`
	Country    string `json:"country" bson:"country" validate:"notblank"`
}

type User struct {
	ID             int            `json:"id" bson:"id" validate:"gte=0"`
	Username       string         `json:"username" bson:"username" validate:"notblank"`
	Email          string         `json:"email" bson:"email" validate:"required,email"`
	HashedPassword string         `json:"hashed_password" bson:"hashed_password" validate:"required"`
	FullName       string         `json:"full_name,omitempty" bson:"full_name,omitempty"`
	PhoneNumber    string         `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	IsActive       bool           `json:"is_active" bson:"is_active"`
	Roles          []string       `json:"roles" bson:"roles" validate:"dive,notblank"`
	Preferences    map[string]any `json:"preferences,omitempty" bson:"preferences,omitempty"`
	LastLogin      *time.Time     `json:"last_login,omitempty" bson:"last_login,omitempty"`
	Addresses      []Address      `json:"addresses" bson:"addresses" validate:"dive"`
	CreatedAt      *time.Time     `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// NewUser returns a user with the account defaults applied.
func NewUser(username, email, hashedPassword string) User {
	return User{
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		Roles:          []string{RoleCustomer},
		Addresses:      []Address{},
	}
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
