package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userJSON struct {
	ID           string            `json:"id"`
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	Title        string            `json:"title"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Website      string            `json:"website"`
	Bio          string            `json:"bio"`
	SocialLinks  map[string]string `json:"social_links"`
	Focus        []string          `json:"focus"`
	LookingFor   []string          `json:"looking_for"`
}

type profileFields struct {
	FullName     string            `json:"full_name"`
	Title        string            `json:"title"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Website      string            `json:"website"`
	Bio          string            `json:"bio"`
	SocialLinks  map[string]string `json:"social_links"`
	Focus        []string          `json:"focus"`
	LookingFor   []string          `json:"looking_for"`
}

type registerBody struct {
	profileFields
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims mirrors the HS256 access token the real service issues.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

type userIDKey struct{}

func (s *Server) issueToken(user userJSON) (string, error) {
	now := s.now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*Claims, error) {
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ExpiresAt < s.now().Unix() {
		return nil, fmt.Errorf("token expired")
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		_, known := s.accounts[claims.Subject]
		s.mu.Unlock()
		if !known {
			writeDetail(w, http.StatusUnauthorized, "Unknown user")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, claims.Subject)))
	}
}

func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}

func applyProfile(user *userJSON, fields profileFields) {
	user.FullName = strings.TrimSpace(fields.FullName)
	user.Title = fields.Title
	user.Organization = fields.Organization
	user.Role = fields.Role
	if user.Role == "" {
		user.Role = "attendee"
	}
	user.Website = fields.Website
	user.Bio = fields.Bio
	user.SocialLinks = fields.SocialLinks
	if user.SocialLinks == nil {
		user.SocialLinks = map[string]string{}
	}
	user.Focus = fields.Focus
	if user.Focus == nil {
		user.Focus = []string{}
	}
	user.LookingFor = fields.LookingFor
	if user.LookingFor == nil {
		user.LookingFor = []string{}
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !decodeBody(w, r, &body) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" || strings.TrimSpace(body.FullName) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "full_name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := userJSON{ID: uuid.NewString(), Email: email}
	applyProfile(&user, body.profileFields)

	s.mu.Lock()
	if _, taken := s.emails[email]; taken {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.accounts[user.ID] = &account{User: user, PasswordHash: hash}
	s.emails[email] = user.ID
	s.mu.Unlock()

	s.respondWithToken(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	acct := s.accounts[s.emails[strings.ToLower(strings.TrimSpace(body.Email))]]
	s.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(body.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondWithToken(w, http.StatusOK, acct.User)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, user userJSON) {
	token, err := s.issueToken(user)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, map[string]any{"token": token, "user": user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.accounts[currentUserID(r)].User
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileFields
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.FullName) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "full_name is required")
		return
	}

	s.mu.Lock()
	acct := s.accounts[currentUserID(r)]
	applyProfile(&acct.User, body)
	user := acct.User
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
