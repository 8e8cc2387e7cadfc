package constants

// Session and context keys
const (
	SessionCookieName = "wildcare_session"
	ContextKeyUserID  = "user_id"
	ContextKeyMember  = "org_member"
	ContextKeyOrgID   = "org_id"
)

// Pagination limits
const (
	MinPage          = 1
	DefaultPageSize  = 20
	MaxPageSize      = 100
)

// MaxSpeciesPerGroup bounds the number of species names accepted in a
// single species group.
const MaxSpeciesPerGroup = 200
