package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"foodshare/internal"
	"foodshare/pkg/types"

	"github.com/google/uuid"
)

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var login = new(types.LoginForm)
	err = decoder.Decode(login, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode login form")
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	login.Email = strings.TrimSpace(login.Email)
	if login.Email == "" || login.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Please enter both email and password.")
		return
	}

	account, err := s.accounts.AccountByEmail(ctx, login.Email)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			s.writeError(w, http.StatusUnauthorized, "No account found with this email. Please check your email or sign up.")
			return
		}
		s.logger.WithError(err).Error("failed to look up account for login")
		s.writeError(w, http.StatusInternalServerError, "An error occurred. Please try again later.")
		return
	}

	if !checkPassword(account.PasswordHash, login.Password) {
		s.writeError(w, http.StatusUnauthorized, "Invalid email or password. Please try again.")
		return
	}

	if !account.EmailVerified {
		s.writeError(w, http.StatusForbidden, "Please verify your email before logging in. Check your inbox for the verification link.")
		return
	}

	if !account.IsActive {
		s.writeError(w, http.StatusForbidden, "Your account has been disabled. Please contact support.")
		return
	}

	err = s.issueSession(w, account)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to issue session")
		s.writeError(w, http.StatusInternalServerError, "An error occurred. Please try again later.")
		return
	}

	redirect := "/admin"
	if !account.IsStaff {
		next := login.Next
		// Check to see if this login attempt was the result of an unauthed redirect
		if next == "" {
			if c, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil {
				next = c.Value
			}
		}
		redirect = safeRedirect(next, "/donate")
	}
	s.clearRedirectCookie(w)

	s.logger.WithField("account_id", account.ID).Info("account logged in")

	s.writeJSON(w, http.StatusOK, map[string]any{"redirect": redirect})
}

func (s *Service) handleGetVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	token, err := uuid.Parse(r.PathValue("token"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Invalid verification link.")
		return
	}

	account, err := s.accounts.AccountByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			s.writeError(w, http.StatusNotFound, "Invalid verification link.")
			return
		}
		s.logger.WithError(err).Error("failed to look up verification token")
		s.internalServerError(w)
		return
	}

	ttl := time.Duration(s.config.VerificationTTLHours) * time.Hour
	if account.VerificationExpired(s.now(), ttl) {
		s.writeError(w, http.StatusBadRequest, "Verification link has expired. Please request a new one.")
		return
	}

	if !account.EmailVerified {
		err = s.accounts.MarkEmailVerified(ctx, account.ID)
		if err != nil {
			s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to mark email verified")
			s.internalServerError(w)
			return
		}
		account.EmailVerified = true
	}

	if !account.IsActive {
		s.writeError(w, http.StatusForbidden, "Your account has been disabled. Please contact support.")
		return
	}

	err = s.issueSession(w, account)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to issue session after verification")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/donate?verification=success", http.StatusSeeOther)
}

func (s *Service) handlePostResendVerification(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var resend = new(types.ResendVerificationForm)
	err = decoder.Decode(resend, r.PostForm)
	if err != nil || strings.TrimSpace(resend.Email) == "" {
		s.writeError(w, http.StatusBadRequest, "Email is required.")
		return
	}

	const sent = "If an unverified account exists for this email, a new verification link has been sent."

	account, err := s.accounts.AccountByEmail(ctx, resend.Email)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			s.writeJSON(w, http.StatusOK, map[string]any{"message": sent})
			return
		}
		s.logger.WithError(err).Error("failed to look up account for resend")
		s.internalServerError(w)
		return
	}

	if account.EmailVerified {
		s.writeJSON(w, http.StatusOK, map[string]any{"message": sent})
		return
	}

	token, _, err := s.accounts.RotateVerificationToken(ctx, account.ID)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to rotate verification token")
		s.internalServerError(w)
		return
	}

	err = s.mailer.SendVerification(ctx, account.Email, account.Username, s.verificationLink(token))
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to resend verification email")
		s.writeError(w, http.StatusBadGateway, "We could not send the verification email. Please try again later.")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"message": sent})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	s.clearRedirectCookie(w)

	http.SetCookie(w, &http.Cookie{
		Name:   internal.COOKIE_LOGGED_OUT_NAME,
		Value:  "true",
		Path:   "/",
		MaxAge: 1,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
