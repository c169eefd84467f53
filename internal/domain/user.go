package domain

// User is the read-only profile of an identity resolved by the auth collaborator.
// Used for notification delivery and for rendering thread authors.
type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
