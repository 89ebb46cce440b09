// Package domain contains core concepts of the chat client.
// This file defines the authenticated Session.
package domain

// Session is the identity of the signed-in principal.
// A nil *Session means nobody is signed in.
type Session struct {
	UID         string
	DisplayName string
	PhotoURL    string
}

// Clone returns a copy that callers may keep without sharing state with the provider.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Authenticated reports whether s carries an identity. A session without a UID does not.
func (s *Session) Authenticated() bool {
	return s != nil && s.UID != ""
}
