package auth

// Principal represents the authenticated member behind a request
type Principal struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	MembershipType string `json:"membership_type"`
}

// PrincipalFromClaims builds the request principal from validated claims
func PrincipalFromClaims(c *Claims) Principal {
	return Principal{
		UserID:         c.UserID,
		Email:          c.Email,
		MembershipType: c.MembershipType,
	}
}
