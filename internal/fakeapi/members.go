package fakeapi

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Membership types
const (
	MembershipMember = "Member"
	MembershipStaff  = "Staff"
)

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrMemberNotFound = errors.New("member not found")
)

// fields the client may never set directly
var protectedFields = map[string]bool{
	"id":             true,
	"email":          true,
	"membershipType": true,
	"password":       true,
	"passwordHash":   true,
}

type member struct {
	id           string
	passwordHash string
	profile      map[string]any
}

func (m *member) snapshot() map[string]any {
	return maps.Clone(m.profile)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// createMember must be called with s.mu held
func (s *Server) createMember(email, password, membershipType string, extra map[string]any) (*member, error) {
	email = normalizeEmail(email)
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m := &member{
		id:           ulid.Make().String(),
		passwordHash: hash,
		profile:      make(map[string]any, len(extra)+3),
	}
	for k, v := range extra {
		if !protectedFields[k] {
			m.profile[k] = v
		}
	}
	m.profile["id"] = m.id
	m.profile["email"] = email
	m.profile["membershipType"] = membershipType

	s.members[m.id] = m
	s.byEmail[email] = m.id
	return m, nil
}

// SeedUser registers a member directly, bypassing the HTTP layer.
// It returns the new member id.
func (s *Server) SeedUser(email, password, membershipType string, profile map[string]any) (string, error) {
	if membershipType == "" {
		membershipType = MembershipMember
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.createMember(email, password, membershipType, profile)
	if err != nil {
		return "", err
	}
	return m.id, nil
}

// IssueToken signs a token for an existing member
func (s *Server) IssueToken(id string) (string, error) {
	s.mu.Lock()
	m, ok := s.members[id]
	s.mu.Unlock()
	if !ok {
		return "", ErrMemberNotFound
	}
	return s.signer.GenerateToken(m.id, m.profile["email"].(string), m.profile["membershipType"].(string))
}

// DeleteUser removes a member; tokens issued for it stop validating
func (s *Server) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.members[id]; ok {
		delete(s.byEmail, m.profile["email"].(string))
		delete(s.members, id)
	}
}

// Profile returns a copy of the stored member profile
func (s *Server) Profile(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return nil, false
	}
	return m.snapshot(), true
}
