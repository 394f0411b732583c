package domain

// Session is the in-memory record of whether, and as whom, the client is
// currently authenticated. It is owned exclusively by the session manager;
// everyone else reads value copies.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// Loading is true while rehydration or a login is in flight. Guard
	// callers must check it before acting on IsAuthenticated.
	Loading bool `json:"loading"`
}

// IsAuthenticated reports whether the session carries both an identity and
// an access token. One without the other never counts as authenticated.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Role returns the session's role, or RoleNone when unauthenticated.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleNone
	}
	return s.User.Role()
}

// Credentials is the durable projection of a session: the record written to
// and read from the credential store. All three fields are persisted together
// and cleared together; a partial record is never a valid resting state.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Partial reports whether the record holds some but not all of its fields.
// Rehydration treats a partial record as absent and clears it.
func (c *Credentials) Partial() bool {
	present := 0
	if c.AccessToken != "" {
		present++
	}
	if c.RefreshToken != "" {
		present++
	}
	if c.User != nil {
		present++
	}
	return present > 0 && present < 3
}

// Complete reports whether all three fields are present.
func (c *Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.User != nil
}
