package domain

// Session pairs the bearer token with the identity it was issued for.
// Token is empty if and only if User is nil.
type Session struct {
	Token string
	User  *User
}

func NewSession(token string, user User) Session {
	if token == "" {
		return Session{}
	}
	return Session{Token: token, User: &user}
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) Consistent() bool {
	return (s.Token == "") == (s.User == nil)
}

func (s Session) UserID() UserID {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
