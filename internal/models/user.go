package models

// UserSummary is the profile the session keeps next to its token.
// Email carries the token subject, which doubles as the login handle.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GoogleIdentity is what the site learns from a verified Google ID token.
type GoogleIdentity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
}

// Summary maps the identity onto the profile shape the session keeps.
func (g *GoogleIdentity) Summary() *UserSummary {
	return &UserSummary{
		ID:    g.Subject,
		Name:  g.Name,
		Email: g.Email,
		Role:  "client",
	}
}
