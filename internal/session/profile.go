package session

import (
	"fmt"
	"maps"
)

// Profile is the server-defined member record
type Profile map[string]any

// Clone returns a shallow copy; nil stays nil
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a copy of p with every key of update applied on top
func (p Profile) Merge(update Profile) Profile {
	merged := make(Profile, len(p)+len(update))
	maps.Copy(merged, p)
	maps.Copy(merged, update)
	return merged
}

// ID returns the member id rendered as a string
func (p Profile) ID() string {
	return p.String("id")
}

// MembershipType returns the membershipType field
func (p Profile) MembershipType() string {
	s, _ := p["membershipType"].(string)
	return s
}

// String renders a field for display, "" if absent
func (p Profile) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// IsAdmin reports whether the profile grants admin rights
func (p Profile) IsAdmin() bool {
	return p != nil && p.MembershipType() == AdminMembershipType
}
