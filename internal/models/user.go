package models

import "time"

// User is the profile document, keyed by handle in the users collection.
// UserID is the identity-provider subject id the auth middleware resolves
// bearer tokens against.
type User struct {
	Handle    string    `json:"handle"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ImageURL  string    `json:"imageUrl"`
	Bio       string    `json:"bio,omitempty"`
	Link      string    `json:"link,omitempty"`
	Location  string    `json:"location,omitempty"`
	UserID    string    `json:"userId"`
}

// ToDoc flattens the user into a store document.
func (u User) ToDoc() map[string]any {
	doc := map[string]any{
		"handle":    u.Handle,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
		"imageUrl":  u.ImageURL,
		"userId":    u.UserID,
	}
	if u.Bio != "" {
		doc["bio"] = u.Bio
	}
	if u.Link != "" {
		doc["link"] = u.Link
	}
	if u.Location != "" {
		doc["location"] = u.Location
	}
	return doc
}

// UserFromDoc rebuilds a user from a store document.
func UserFromDoc(doc map[string]any) User {
	return User{
		Handle:    docString(doc, "handle"),
		Email:     docString(doc, "email"),
		CreatedAt: docTime(doc, "createdAt"),
		ImageURL:  docString(doc, "imageUrl"),
		Bio:       docString(doc, "bio"),
		Link:      docString(doc, "link"),
		Location:  docString(doc, "location"),
		UserID:    docString(doc, "userId"),
	}
}

// SignupRequest is the POST /signup body.
type SignupRequest struct {
	Handle          string `json:"handle" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_pass" validate:"eqfield=Password"`
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateDetailsRequest is the POST /user body. Blank fields are skipped;
// a link without an http prefix gets http:// prepended.
type UpdateDetailsRequest struct {
	Bio      string `json:"bio"`
	Link     string `json:"link"`
	Location string `json:"location"`
}
