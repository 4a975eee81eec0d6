package domain

import (
	"fmt"
	"strings"
)

type UserID string

type Role string

const (
	RoleAttendee Role = "attendee"
	RoleVIP      Role = "vip"
	RoleSpeaker  Role = "speaker"
	RoleSponsor  Role = "sponsor"
	RoleDelegate Role = "delegate"
)

// Roles lists the roles offered on registration and profile forms, in display order.
func Roles() []Role {
	return []Role{RoleAttendee, RoleVIP, RoleSpeaker, RoleSponsor, RoleDelegate}
}

func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// User is the server's view of the signed-in identity. It is never edited in place.
type User struct {
	ID           UserID
	FullName     string
	Email        string
	Title        string
	Organization string
	Role         Role
	Website      string
	Bio          string
	SocialLinks  map[string]string
	Focus        []string
	LookingFor   []string
}

type ProfileFields struct {
	FullName     string
	Title        string
	Organization string
	Role         Role
	Website      string
	Bio          string
	LinkedIn     string
	Focus        []string
	LookingFor   []string
}

type Registration struct {
	Email    string
	Password string
	Profile  ProfileFields
}

// ValidationError reports input rejected before anything is sent to the server.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Profile.FullName) == "" {
		return &ValidationError{Message: "full name is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Message: "email is required"}
	}
	if r.Password == "" {
		return &ValidationError{Message: "password is required"}
	}
	if r.Profile.Role != "" && !r.Profile.Role.Valid() {
		return &ValidationError{Message: fmt.Sprintf("unsupported role %q", r.Profile.Role)}
	}
	return nil
}

type ProfileUpdate struct {
	Profile ProfileFields
}
