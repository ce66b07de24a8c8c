package model

// IdentityKind tags which session mechanism resolved the caller.
type IdentityKind string

const (
	IdentityCustom    IdentityKind = "custom"
	IdentityProvider  IdentityKind = "provider"
	IdentityAnonymous IdentityKind = "anonymous"
)

// Identity is the result of resolving the current caller. Exactly one of
// Claims/Provider is set depending on Kind; both are nil for Anonymous.
type Identity struct {
	Kind     IdentityKind
	Claims   *SessionClaims
	Provider *ProviderSession
}

func Anonymous() Identity {
	return Identity{Kind: IdentityAnonymous}
}

// ProviderSession is the identity carried by the secondary OAuth provider.
type ProviderSession struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// MeData is the identity payload returned by GET /api/v1/auth/me. All fields
// are nullable; an anonymous caller gets nulls and an empty permission list.
type MeData struct {
	User        *MeUser           `json:"user"`
	Employee    *EmployeeSnapshot `json:"employee"`
	Role        *MeRole           `json:"role"`
	Permissions []string          `json:"permissions"`
}

type MeUser struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

type MeRole struct {
	Name string `json:"name"`
}
