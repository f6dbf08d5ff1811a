package domain

// Track names one of the two identity tracks kept in client storage.
type Track string

const (
	TrackPrimary Track = "primary"
	TrackCompany Track = "company"
)

// SessionRecord is one authenticated identity persisted for a browser.
// A record only exists when both the token and the user decoded cleanly.
type SessionRecord struct {
	Token string
	User  *User
}

// IdentityKind tags which tracks are present.
type IdentityKind int

const (
	IdentityNone IdentityKind = iota
	IdentityPrimary
	IdentityCompany
	IdentityBoth
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityPrimary:
		return "primary"
	case IdentityCompany:
		return "company"
	case IdentityBoth:
		return "both"
	default:
		return "none"
	}
}

// Identity is the union of the two stored tracks. Both may be present at
// once; nothing enforces exclusivity between them.
//
// CompanyToken is set when a company token is stored, even if its user
// failed to decode and Company is nil.
type Identity struct {
	Primary      *SessionRecord
	Company      *SessionRecord
	CompanyToken bool
}

// NewIdentity builds an Identity, dropping records without a token or user.
func NewIdentity(primary, company *SessionRecord) Identity {
	return Identity{Primary: usable(primary), Company: usable(company)}
}

func usable(r *SessionRecord) *SessionRecord {
	if r == nil || r.Token == "" || r.User == nil {
		return nil
	}
	return r
}

// Kind reports which tracks are present.
func (i Identity) Kind() IdentityKind {
	switch {
	case i.Primary != nil && i.Company != nil:
		return IdentityBoth
	case i.Primary != nil:
		return IdentityPrimary
	case i.Company != nil:
		return IdentityCompany
	default:
		return IdentityNone
	}
}

// User returns the resolved user; the primary track wins when both exist.
func (i Identity) User() *User {
	if i.Primary != nil {
		return i.Primary.User
	}
	if i.Company != nil {
		return i.Company.User
	}
	return nil
}
