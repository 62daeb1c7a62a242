package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/xid"
)

// AuthManager issues session tokens and holds the hashed super-admin PIN.
// A token is the whole session: its subject is the session id and its claims
// carry the reducer state, so elevating or navigating reissues the token.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	pinHash  string
}

type sessionClaims struct {
	jwtlib.RegisteredClaims
	Role domain.Role  `json:"role"`
	View session.View `json:"view"`
}

type Session struct {
	ID    string
	State session.State
}

func (s Session) Actor() domain.Actor {
	return domain.Actor{SessionID: s.ID, Role: s.State.Role}
}

func NewAuthManager(secret string, tokenTTL time.Duration, pin string) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}

	manager := &AuthManager{secret: []byte(secret), tokenTTL: tokenTTL}
	pin = strings.TrimSpace(pin)
	if pin != "" {
		if hashed, err := hashPIN(pin); err == nil {
			manager.pinHash = hashed
		}
	}
	return manager
}

func (a *AuthManager) Open() (domain.SessionResponse, error) {
	return a.Issue(Session{ID: xid.New("sess"), State: session.Initial()})
}

func (a *AuthManager) Issue(s Session) (domain.SessionResponse, error) {
	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   s.ID,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "shopos",
		},
		Role: s.State.Role,
		View: s.State.View,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return domain.SessionResponse{}, err
	}

	resp := describe(s.State)
	resp.AccessToken = token
	resp.ExpiresAt = expiresAt.Format(time.RFC3339)
	return resp, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (Session, error) {
	claims := &sessionClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer("shopos"))
	if err != nil || !token.Valid {
		return Session{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, errors.New("invalid token subject")
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleSuperAdmin {
		return Session{}, errors.New("invalid token role")
	}
	view, err := session.ParseView(string(claims.View))
	if err != nil {
		return Session{}, errors.New("invalid token view")
	}
	return Session{ID: sub, State: session.State{Role: claims.Role, View: view}}, nil
}

// ValidatePIN reports whether pin matches the configured super-admin PIN.
// With no PIN configured, elevation is impossible.
func (a *AuthManager) ValidatePIN(pin string) bool {
	input := strings.TrimSpace(pin)
	if input == "" || !isPINHash(a.pinHash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.pinHash), []byte(input)) == nil
}

func describe(state session.State) domain.SessionResponse {
	views := session.VisibleViews(state.Role)
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, string(v))
	}
	return domain.SessionResponse{Role: state.Role, View: string(state.View), Views: names}
}

func hashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPINHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
