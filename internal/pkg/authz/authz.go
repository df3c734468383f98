// Package authz holds the role decision table every guarded route goes through.
package authz

import "strings"

// Kind is the class of an authenticated principal.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// AdminRole is meaningful only for KindAdmin principals.
type AdminRole string

const (
	RoleNone   AdminRole = ""
	RoleNormal AdminRole = "normal"
	RoleMain   AdminRole = "main"
)

// Token is a role a route declares it accepts.
type Token uint8

const (
	TokenUser Token = 1 << iota
	TokenAdmin
	TokenSuperAdmin
)

var tokenNames = []struct {
	t    Token
	name string
}{
	{TokenUser, "user"},
	{TokenAdmin, "admin"},
	{TokenSuperAdmin, "superadmin"},
}

func (t Token) String() string {
	for _, tn := range tokenNames {
		if tn.t == t {
			return tn.name
		}
	}
	return "unknown"
}

// Set is a set of route tokens.
type Set uint8

// NewSet builds a Set from tokens.
func NewSet(tokens ...Token) Set {
	var s Set
	for _, t := range tokens {
		s |= Set(t)
	}
	return s
}

func (s Set) Has(t Token) bool { return s&Set(t) != 0 }

func (s Set) String() string {
	var names []string
	for _, tn := range tokenNames {
		if s.Has(tn.t) {
			names = append(names, tn.name)
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Principal is the resolved caller of a request.
type Principal struct {
	ID    string
	Name  string
	Email string
	Kind  Kind
	Role  AdminRole
}

// IsSuperAdmin reports whether p is a main admin.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Kind == KindAdmin && p.Role == RoleMain
}

// Reason explains a denial.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoToken
	ReasonInsufficient
	ReasonSuperAdminRequired
)

func (r Reason) Message() string {
	switch r {
	case ReasonNoToken:
		return "no token or invalid token"
	case ReasonInsufficient:
		return "insufficient permissions"
	case ReasonSuperAdminRequired:
		return "super admin privileges required"
	default:
		return ""
	}
}

// Decision is the outcome of Authorize.
type Decision struct {
	Permit bool
	Reason Reason
}

// Permit decides access for a principal of the given kind and role.
//
//	user          -> permitted iff "user" is required
//	admin, main   -> always permitted
//	admin, normal -> permitted iff "admin" is required and "superadmin" is not
//	otherwise     -> denied
func Permit(kind Kind, role AdminRole, required Set) bool {
	switch {
	case kind == KindUser:
		return required.Has(TokenUser)
	case kind == KindAdmin && role == RoleMain:
		return true
	case kind == KindAdmin && role == RoleNormal:
		return required.Has(TokenAdmin) && !required.Has(TokenSuperAdmin)
	default:
		return false
	}
}

// Authorize applies Permit to p and attaches the denial reason the transport
// layer maps to a status code. A nil principal means no valid token was presented.
func Authorize(p *Principal, required Set) Decision {
	if p == nil {
		return Decision{Reason: ReasonNoToken}
	}
	if Permit(p.Kind, p.Role, required) {
		return Decision{Permit: true}
	}
	if p.Kind == KindAdmin && p.Role == RoleNormal && required.Has(TokenSuperAdmin) {
		return Decision{Reason: ReasonSuperAdminRequired}
	}
	return Decision{Reason: ReasonInsufficient}
}
