package compliance

// Scope restricts fleet queries to a company and/or location. The zero
// value is unrestricted.
type Scope struct {
	CompanyID  *uint
	LocationID *uint
	// Deny matches nothing.
	Deny bool
}

type Principal struct {
	Role       Role
	CompanyID  *uint
	LocationID *uint
}

// ScopeForUser maps a user's role to the slice of the fleet they may see.
func ScopeForUser(p Principal) Scope {
	switch p.Role {
	case RoleSuperAdmin:
		return Scope{}
	case RoleCompanyManager:
		if p.CompanyID == nil {
			return Scope{Deny: true}
		}
		id := *p.CompanyID
		return Scope{CompanyID: &id}
	case RoleLocationChief:
		if p.LocationID == nil {
			return Scope{Deny: true}
		}
		id := *p.LocationID
		return Scope{LocationID: &id}
	default:
		return Scope{Deny: true}
	}
}

// Allows checks a single vehicle placement against the scope.
func (s Scope) Allows(companyID, locationID *uint) bool {
	if s.Deny {
		return false
	}
	if s.CompanyID != nil && (companyID == nil || *companyID != *s.CompanyID) {
		return false
	}
	if s.LocationID != nil && (locationID == nil || *locationID != *s.LocationID) {
		return false
	}
	return true
}

// CanDeleteRecords mirrors the back office rule that location chiefs may
// add and edit history records but not delete them.
func (p Principal) CanDeleteRecords() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleCompanyManager
}
