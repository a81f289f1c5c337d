package models

import "time"

// Profile status values. Every new registration starts as pending and is
// gated by admin approval before the account gains platform access.
const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

// User is the identity record persisted at registration.
type User struct {
	ID               string    `bson:"id" json:"id"`
	FullName         string    `bson:"fullName" json:"fullName"`
	Email            string    `bson:"email" json:"email"`
	PasswordHash     string    `bson:"passwordHash,omitempty" json:"-"`
	UserType         UserType  `bson:"userType" json:"userType"`
	Telephone        string    `bson:"telephone" json:"telephone"`
	PhoneCountryCode string    `bson:"phoneCountryCode" json:"phoneCountryCode"`
	Country          string    `bson:"country" json:"country"`
	City             string    `bson:"city" json:"city"`
	CoverImageURL    string    `bson:"coverImageUrl" json:"coverImageUrl"`
	PhotoURL         string    `bson:"photoUrl" json:"photoUrl"`
	ProfileStatus    string    `bson:"profileStatus" json:"profileStatus"`
	IsOAuthUser      bool      `bson:"isOAuthUser" json:"isOAuthUser"`
	TokenHash        string    `bson:"tokenHash,omitempty" json:"-"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}
