package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"foodshare/internal/store"
	"foodshare/pkg/types"
)

func (s *Service) handleGetDonors(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	donors, err := s.accounts.Donors(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list donors")
		s.internalServerError(w)
		return
	}

	rows := make([]types.DonorRow, 0, len(donors))
	for _, d := range donors {
		rows = append(rows, donorRow(d))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"donors": rows})
}

func (s *Service) handlePostDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	actor := accountFromContext(ctx)

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var donorForm = new(types.DonorForm)
	err = decoder.Decode(donorForm, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode donor form")
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	donorForm.Username = strings.TrimSpace(donorForm.Username)
	donorForm.Email = strings.TrimSpace(donorForm.Email)

	if donorForm.Username == "" || donorForm.Email == "" || donorForm.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if field, msg := identityProblem(donorForm.Username, donorForm.Email); msg != "" {
		s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{field: msg})
		return
	}
	if msg := passwordProblem(donorForm.Password); msg != "" {
		s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{"password": msg})
		return
	}

	hash, err := hashPassword(donorForm.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash donor password")
		s.internalServerError(w)
		return
	}

	// staff vouch for the address, so no verification round trip
	donor := &types.Account{
		Username:      donorForm.Username,
		Email:         donorForm.Email,
		PasswordHash:  hash,
		IsActive:      true,
		EmailVerified: true,
	}

	err = s.accounts.CreateAccount(ctx, donor)
	switch {
	case errors.Is(err, types.ErrDuplicateUsername):
		s.writeError(w, http.StatusBadRequest, "Username already exists")
		return
	case errors.Is(err, types.ErrDuplicateEmail):
		s.writeError(w, http.StatusBadRequest, "Email already exists")
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to create donor")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("donor_id", donor.ID).WithField("actor", actor.ID).Info("donor added")

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Donor added successfully",
		"donor":   donorRow(donor),
	})
}

func (s *Service) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	donor, err := s.accounts.Donor(ctx, r.PathValue("donorID"))
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donor")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":       donor.ID,
		"username": donor.Username,
		"email":    donor.Email,
	})
}

func (s *Service) handlePostUpdateDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	actor := accountFromContext(ctx)
	donorID := r.PathValue("donorID")

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var donorForm = new(types.DonorForm)
	err = decoder.Decode(donorForm, r.PostForm)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	donor, err := s.accounts.Donor(ctx, donorID)
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donor for update")
		return
	}

	username := strings.TrimSpace(donorForm.Username)
	email := strings.TrimSpace(donorForm.Email)
	if username == "" || email == "" {
		s.writeError(w, http.StatusBadRequest, "Username and email are required")
		return
	}
	if field, msg := identityProblem(username, email); msg != "" {
		s.writeFieldErrors(w, http.StatusBadRequest, msg, map[string]string{field: msg})
		return
	}

	if status, msg, err := s.identityTaken(r, username, email, donor.ID); err != nil {
		s.logger.WithError(err).WithField("donor_id", donor.ID).Error("failed to check donor identity")
		s.internalServerError(w)
		return
	} else if msg != "" {
		s.writeError(w, status, msg)
		return
	}

	donor.Username = username
	donor.Email = email
	err = s.accounts.UpdateAccount(ctx, donor)
	if err != nil {
		s.writeStoreError(w, err, "failed to update donor")
		return
	}

	s.logger.WithField("donor_id", donor.ID).WithField("actor", actor.ID).Info("donor updated")

	s.writeJSON(w, http.StatusOK, map[string]any{"message": "Donor updated successfully"})
}

func (s *Service) handlePostDeleteDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	actor := accountFromContext(ctx)

	donor, err := s.accounts.Donor(ctx, r.PathValue("donorID"))
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donor for delete")
		return
	}

	keys, err := s.foodItems.PhotoKeysByDonor(ctx, donor.ID)
	if err != nil {
		s.logger.WithError(err).WithField("donor_id", donor.ID).Error("failed to collect donor photos")
		s.internalServerError(w)
		return
	}

	err = s.accounts.DeleteAccount(ctx, donor.ID)
	if err != nil {
		s.writeStoreError(w, err, "failed to delete donor")
		return
	}
	s.discardPhotos(ctx, keys)

	s.logger.WithField("donor_id", donor.ID).WithField("actor", actor.ID).WithField("photos", len(keys)).Info("donor deleted")

	s.writeJSON(w, http.StatusOK, map[string]any{"message": "Donor deleted successfully"})
}

func (s *Service) handleGetDonorDonations(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	donor, err := s.accounts.Donor(ctx, r.PathValue("donorID"))
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donor")
		return
	}

	filter := store.DonationFilter{DonorID: donor.ID}
	total, err := s.donations.CountDonations(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("donor_id", donor.ID).Error("failed to count donor donations")
		s.internalServerError(w)
		return
	}

	summaries := make([]types.DonationSummary, 0, total)
	if total > 0 {
		donations, err := s.donations.ListDonations(ctx, filter, total, 0)
		if err != nil {
			s.logger.WithError(err).WithField("donor_id", donor.ID).Error("failed to list donor donations")
			s.internalServerError(w)
			return
		}
		for _, d := range donations {
			summaries = append(summaries, donationSummary(d))
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"donations": summaries})
}

func (s *Service) handlePostDonorStatus(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	actor := accountFromContext(ctx)
	donorID := r.PathValue("donorID")

	active, err := decodeActive(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err = s.accounts.SetActive(ctx, donorID, active)
	if err != nil {
		s.writeStoreError(w, err, "failed to set donor status")
		return
	}

	s.logger.WithField("donor_id", donorID).WithField("active", active).WithField("actor", actor.ID).Info("donor status changed")

	s.writeJSON(w, http.StatusOK, map[string]any{"is_active": active})
}

// decodeActive reads is_active from a JSON body or a form post. A missing
// value means inactive.
func decodeActive(w http.ResponseWriter, r *http.Request) (bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if isJSON(r) {
		var in types.ActiveInput
		err := json.NewDecoder(r.Body).Decode(&in)
		return in.IsActive, err
	}

	err := r.ParseForm()
	if err != nil {
		return false, err
	}

	raw := strings.TrimSpace(r.PostForm.Get("is_active"))
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// identityProblem checks the shape of a username and email pair.
func identityProblem(username, email string) (string, string) {
	if msg := usernameProblem(username); msg != "" {
		return "username", msg
	}
	if !plausibleEmail(email) {
		return "email", "Please enter a valid email address."
	}
	return "", ""
}

// identityTaken reports a message when another account already uses the
// username or email.
func (s *Service) identityTaken(r *http.Request, username, email, excludeID string) (int, string, error) {
	var ctx = r.Context()

	taken, err := s.accounts.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return 0, "", err
	}
	if taken {
		return http.StatusBadRequest, "Username already exists", nil
	}

	taken, err = s.accounts.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return 0, "", err
	}
	if taken {
		return http.StatusBadRequest, "Email already exists", nil
	}

	return 0, "", nil
}

func donorRow(a *types.Account) types.DonorRow {
	return types.DonorRow{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		IsActive:   a.IsActive,
		DateJoined: a.DateJoined,
	}
}
