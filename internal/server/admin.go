package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"foodshare/internal"
	"foodshare/internal/realtime"
	"foodshare/internal/reporting"
	"foodshare/internal/store"
	"foodshare/pkg/types"

	"golang.org/x/sync/errgroup"
)

func (s *Service) handleGetAdminDashboard(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	now := s.now()

	in := reporting.DashboardInput{
		Now:         now,
		TrendMonths: internal.DASHBOARD_TREND_MONTHS,
	}
	months := reporting.LastMonths(now, internal.DASHBOARD_TREND_MONTHS)

	var donations []*types.DonationWithDonor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Accounts, err = s.stats.AccountCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		in.StatusCounts, err = s.stats.DonationStatusCounts(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		in.ItemTotals, err = s.stats.FoodItemTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		in.CategoryCounts, err = s.stats.CategoryCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		in.MonthCounts, err = s.stats.MonthlyDonationCounts(gctx, months[0])
		return err
	})
	g.Go(func() (err error) {
		donations, in.Page, err = s.donationPage(gctx, store.DonationFilter{}, r.URL.Query().Get("page"))
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("failed to build admin dashboard")
		s.internalServerError(w)
		return
	}

	in.Donations = make([]types.DonationListRow, 0, len(donations))
	for _, d := range donations {
		in.Donations = append(in.Donations, donationListRow(d))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": reporting.Dashboard(in),
	})
}

func (s *Service) handleGetAdminDonations(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var filter store.DonationFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		filter.Status = types.DonationStatus(raw)
		if !filter.Status.Valid() {
			s.writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}

	donations, page, err := s.donationPage(ctx, filter, r.URL.Query().Get("page"))
	if err != nil {
		s.logger.WithError(err).WithField("status", filter.Status).Error("failed to list donations")
		s.internalServerError(w)
		return
	}

	rows := make([]types.DonationListRow, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, donationListRow(d))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"donations":    rows,
		"current_page": page.Number,
		"total_pages":  page.TotalPages,
		"pagination":   page.Pagination(),
	})
}

func (s *Service) handlePostDonationStatus(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)
	donationNo := r.PathValue("donationNo")

	raw, err := s.decodeStatus(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	status := types.DonationStatus(raw)
	if !status.Valid() {
		s.writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	previous, changed, err := s.donations.UpdateStatus(ctx, donationNo, status)
	if err != nil {
		s.writeStoreError(w, err, "failed to update donation status")
		return
	}

	if changed {
		s.metrics.DonationTransition(string(previous), string(status))
		s.publish(realtime.Event{
			Type:       realtime.EventDonationStatusChanged,
			DonationNo: donationNo,
			Status:     string(status),
			Previous:   string(previous),
			Actor:      account.Username,
		})
		s.logger.
			WithField("donation_no", donationNo).
			WithField("from", previous).
			WithField("to", status).
			WithField("actor", account.ID).
			Info("donation status changed")
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Donation status updated to %s", status),
		"status":  status,
		"changed": changed,
	})
}

// decodeStatus reads the target status from a JSON body or a form post.
func (s *Service) decodeStatus(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if isJSON(r) {
		var in types.StatusInput
		err := json.NewDecoder(r.Body).Decode(&in)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(in.Status), nil
	}

	err := r.ParseForm()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostForm.Get("status")), nil
}

func (s *Service) handlePostUpdateDonation(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)
	donationNo := r.PathValue("donationNo")

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)

	var in types.DonationUpdateInput
	err := json.NewDecoder(r.Body).Decode(&in)
	if err != nil {
		if errors.Is(payloadError(err), errPayloadTooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request is too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	current, err := s.donations.Donation(ctx, donationNo)
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donation for update")
		return
	}

	updated, err := donationFromInput(mergeDonationUpdate(&current.Donation, &in))
	if err != nil {
		s.writeValidationError(w, err)
		return
	}
	updated.ID = current.ID
	updated.DonationNo = current.DonationNo

	var items []*types.FoodItem
	var uploaded []string
	if in.FoodItems != nil {
		drafts, err := itemsFromInput(*in.FoodItems)
		if err != nil {
			s.writeValidationError(w, err)
			return
		}

		uploaded = s.storePhotos(ctx, drafts)
		items = make([]*types.FoodItem, 0, len(drafts))
		for _, d := range drafts {
			items = append(items, d.item)
		}
	}

	removed, err := s.donations.UpdateDonation(ctx, updated, items)
	if err != nil {
		s.discardPhotos(ctx, uploaded)
		s.writeStoreError(w, err, "failed to update donation")
		return
	}
	s.discardPhotos(ctx, removed)

	s.publish(realtime.Event{
		Type:       realtime.EventDonationUpdated,
		DonationNo: donationNo,
		Status:     string(current.Status),
		Actor:      account.Username,
	})

	s.logger.WithField("donation_no", donationNo).WithField("actor", account.ID).Info("donation updated")

	s.writeJSON(w, http.StatusOK, nil)
}

func (s *Service) handlePostDeleteDonation(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)
	donationNo := r.PathValue("donationNo")

	keys, err := s.donations.DeleteDonation(ctx, donationNo)
	if err != nil {
		s.writeStoreError(w, err, "failed to delete donation")
		return
	}
	s.discardPhotos(ctx, keys)

	s.publish(realtime.Event{
		Type:       realtime.EventDonationDeleted,
		DonationNo: donationNo,
		Actor:      account.Username,
	})

	s.logger.WithField("donation_no", donationNo).WithField("actor", account.ID).Info("donation deleted")

	s.writeJSON(w, http.StatusOK, nil)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
