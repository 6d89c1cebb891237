package server

import (
	"net/http"
	"strings"

	"foodshare/pkg/types"
)

// handlePostProfile lets a staff member change their own username, email
// and optionally password. The current password is always required.
func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var profile = new(types.ProfileForm)
	err = decoder.Decode(profile, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode profile form")
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	if !checkPassword(account.PasswordHash, profile.CurrentPassword) {
		s.writeFieldErrors(w, http.StatusBadRequest, "Current password is incorrect",
			map[string]string{"current_password": "Current password is incorrect"})
		return
	}

	username := strings.TrimSpace(profile.Username)
	email := strings.TrimSpace(profile.Email)
	if username == "" || email == "" {
		s.writeError(w, http.StatusBadRequest, "Username and email are required")
		return
	}
	if field, msg := identityProblem(username, email); msg != "" {
		s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{field: msg})
		return
	}

	if status, msg, err := s.identityTaken(r, username, email, account.ID); err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to check profile identity")
		s.internalServerError(w)
		return
	} else if msg != "" {
		s.writeError(w, status, msg)
		return
	}

	updated := *account
	updated.Username = username
	updated.Email = email

	if profile.NewPassword != "" {
		if msg := passwordProblem(profile.NewPassword); msg != "" {
			s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{"new_password": msg})
			return
		}

		updated.PasswordHash, err = hashPassword(profile.NewPassword)
		if err != nil {
			s.logger.WithError(err).Error("failed to hash new password")
			s.internalServerError(w)
			return
		}
	}

	err = s.accounts.UpdateAccount(ctx, &updated)
	if err != nil {
		s.writeStoreError(w, err, "failed to update profile")
		return
	}

	// the session carries the email claim
	err = s.issueSession(w, &updated)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to refresh session after profile update")
	}

	s.logger.WithField("account_id", account.ID).WithField("password_changed", profile.NewPassword != "").Info("profile updated")

	s.writeJSON(w, http.StatusOK, nil)
}
