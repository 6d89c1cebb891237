package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodshare/internal"
	"foodshare/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const sessionIssuer = "foodshare"

// issueSession signs a session token for account and stores it, encrypted,
// in the session cookie.
func (s *Service) issueSession(w http.ResponseWriter, account *types.Account) error {
	now := s.now()
	maxAge := time.Duration(s.config.SessionMaxAgeSec) * time.Second

	token, err := jwt.NewBuilder().
		Issuer(sessionIssuer).
		Subject(account.ID).
		IssuedAt(now).
		Expiration(now.Add(maxAge)).
		Claim("email", account.Email).
		Claim("staff", account.IsStaff).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.signingKey))
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	encrypted, err := s.cookie.Encode(internal.COOKIE_SESSION_NAME, string(signed))
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SESSION_NAME,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

// sessionAccountID decrypts and verifies the session cookie, returning the
// account id it was issued for.
func (s *Service) sessionAccountID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(internal.COOKIE_SESSION_NAME)
	if err != nil {
		return "", err
	}

	var signed string
	err = s.cookie.Decode(internal.COOKIE_SESSION_NAME, cookie.Value, &signed)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt session: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(signed),
		jwt.WithKey(jwa.HS256(), s.signingKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to verify session token: %w", err)
	}

	accountID, ok := token.Subject()
	if !ok || accountID == "" {
		return "", errors.New("no account id in session subject claim")
	}

	return accountID, nil
}

func (s *Service) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SESSION_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
