package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"foodshare/pkg/types"

	"github.com/google/uuid"
)

func (s *Service) handlePostSignup(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var signup = new(types.SignupForm)
	err = decoder.Decode(signup, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode signup form")
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	signup.Username = strings.TrimSpace(signup.Username)
	signup.Email = strings.TrimSpace(signup.Email)

	s.logger.WithField("username", signup.Username).WithField("email", signup.Email).Info("signup attempt")

	if field, msg := validateSignupInput(signup); msg != "" {
		s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{field: msg})
		return
	}

	hash, err := hashPassword(signup.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	account := &types.Account{
		Username:     signup.Username,
		Email:        signup.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.accounts.CreateAccount(ctx, account)
	switch {
	case errors.Is(err, types.ErrDuplicateUsername):
		s.writeFieldErrors(w, http.StatusConflict, "This username is already taken. Please choose another.",
			map[string]string{"username": "Username already exists"})
		return
	case errors.Is(err, types.ErrDuplicateEmail):
		s.writeFieldErrors(w, http.StatusConflict, "An account with this email already exists.",
			map[string]string{"email": "Email already exists"})
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to create account")
		s.writeError(w, http.StatusInternalServerError, "An error occurred during registration. Please try again later.")
		return
	}

	err = s.mailer.SendVerification(ctx, account.Email, account.Username, s.verificationLink(account.VerificationToken))
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to send verification email")
		s.writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Account created successfully, but there was an issue sending the verification email. Please contact support.",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account created successfully! Please check your email for verification instructions.",
	})
}

func (s *Service) verificationLink(token uuid.UUID) string {
	return fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(s.config.BaseURL, "/"), token)
}

// validateSignupInput checks the rules in order and reports the first field
// that fails along with its message.
func validateSignupInput(f *types.SignupForm) (string, string) {
	switch {
	case f.Username == "" || f.Email == "" || f.Password == "" || f.ConfirmPassword == "":
		return "form", "All fields are required."
	case f.Password != f.ConfirmPassword:
		return "confirmPassword", "Passwords do not match."
	}

	if msg := usernameProblem(f.Username); msg != "" {
		return "username", msg
	}

	if !plausibleEmail(f.Email) {
		return "email", "Please enter a valid email address."
	}

	if msg := passwordProblem(f.Password); msg != "" {
		return "password", msg
	}

	return "", ""
}

func usernameProblem(username string) string {
	if len([]rune(username)) < 3 {
		return "Username must be at least 3 characters long."
	}
	for _, c := range username {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return "Username can only contain letters and numbers."
		}
	}
	return ""
}

func plausibleEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
