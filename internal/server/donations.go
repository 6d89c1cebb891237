package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"foodshare/internal"
	"foodshare/internal/realtime"
	"foodshare/internal/reporting"
	"foodshare/internal/storage"
	"foodshare/internal/store"
	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"github.com/skip2/go-qrcode"
)

const submissionDateLayout = "2006-01-02 15:04"

var errPayloadTooLarge = errors.New("request body too large")

func (s *Service) handleGetDonorDashboard(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)

	counts, err := s.stats.DonationStatusCounts(ctx, account.ID)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to count donor donations")
		s.internalServerError(w)
		return
	}

	recent, err := s.donations.ListDonations(ctx, store.DonationFilter{DonorID: account.ID}, internal.RECENT_DONATIONS_LIMIT, 0)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to fetch recent donations")
		s.internalServerError(w)
		return
	}

	summaries := make([]types.DonationSummary, 0, len(recent))
	for _, d := range recent {
		summaries = append(summaries, donationSummary(d))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": reporting.DonorDashboard(counts, summaries),
	})
}

func (s *Service) handlePostDonation(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)

	in, err := s.decodeDonationPayload(w, r)
	if err != nil {
		if errors.Is(err, errPayloadTooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request is too large")
			return
		}
		s.logger.WithError(err).WithField("account_id", account.ID).Warn("failed to decode donation payload")
		s.writeError(w, http.StatusBadRequest, "Invalid donation payload")
		return
	}

	donation, err := donationFromInput(in)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	drafts, err := itemsFromInput(in.FoodItems)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	donation.DonorID = account.ID

	uploaded := s.storePhotos(ctx, drafts)
	items := make([]*types.FoodItem, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, d.item)
	}

	err = s.donations.CreateDonation(ctx, donation, items)
	if err != nil {
		s.discardPhotos(ctx, uploaded)
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to create donation")
		s.internalServerError(w)
		return
	}

	s.metrics.DonationSubmitted(string(donation.DeliveryMethod))
	s.publish(realtime.Event{
		Type:       realtime.EventDonationSubmitted,
		DonationNo: donation.DonationNo,
		Status:     string(donation.Status),
		Actor:      account.Username,
	})

	s.logger.
		WithField("account_id", account.ID).
		WithField("donation_no", donation.DonationNo).
		WithField("items", len(items)).
		Info("donation submitted")

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Donation submitted successfully",
		"donation_no": donation.DonationNo,
	})
}

// decodeDonationPayload accepts a bare donation object, or one nested under
// "donation_data" either as an object or as a JSON encoded string. Form posts
// carry the same string in a donation_data field.
func (s *Service) decodeDonationPayload(w http.ResponseWriter, r *http.Request) (*types.DonationInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		err := r.ParseMultipartForm(s.config.MaxRequestBytes)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, payloadError(err)
		}

		in := new(types.DonationInput)
		err = json.Unmarshal([]byte(r.FormValue("donation_data")), in)
		if err != nil {
			return nil, fmt.Errorf("failed to decode donation_data field: %w", err)
		}
		return in, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, payloadError(err)
	}

	var envelope map[string]json.RawMessage
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to decode donation body: %w", err)
	}

	raw, nested := envelope["donation_data"]
	if !nested {
		raw = body
	}

	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = json.RawMessage(encoded)
	}

	in := new(types.DonationInput)
	err = json.Unmarshal(raw, in)
	if err != nil {
		return nil, fmt.Errorf("failed to decode donation data: %w", err)
	}

	return in, nil
}

func payloadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errPayloadTooLarge
	}
	return err
}

func (s *Service) writeValidationError(w http.ResponseWriter, err error) {
	var verr *validationError
	if errors.As(err, &verr) {
		s.writeFieldErrors(w, http.StatusBadRequest, verr.Error(), map[string]string{verr.Field: verr.Error()})
		return
	}
	s.internalServerError(w)
}

// storePhotos uploads the photo attached to each draft and records its key on
// the item. Photos that cannot be decoded or stored are logged and dropped;
// the item is kept without one. The uploaded keys are returned.
func (s *Service) storePhotos(ctx context.Context, drafts []*itemDraft) []string {
	keys := make([]string, 0)
	for _, d := range drafts {
		if d.item.ID == "" {
			d.item.ID = utils.NanoID()
		}
		if d.photo == "" {
			continue
		}

		entry := s.logger.WithField("item_id", d.item.ID)

		photo, err := storage.DecodeDataURL(d.photo)
		if err != nil {
			entry.WithError(err).Error("error processing photo")
			continue
		}
		if s.config.MaxPhotoBytes > 0 && len(photo.Data) > s.config.MaxPhotoBytes {
			entry.WithField("bytes", len(photo.Data)).Error("photo exceeds size limit, skipping")
			continue
		}

		key := storage.PhotoKey(internal.PHOTO_KEY_PREFIX, d.item.ID, photo.Ext)
		err = s.storage.Put(ctx, key, photo.ContentType, photo.Data)
		if err != nil {
			entry.WithError(err).Error("failed to store photo")
			continue
		}

		d.item.PhotoKey = &key
		keys = append(keys, key)
	}
	return keys
}

// discardPhotos removes stored objects that no longer belong to any item.
// Failures are logged; the objects are orphaned, not referenced.
func (s *Service) discardPhotos(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}

	failed, err := storage.DeleteAll(ctx, s.storage, keys)
	if err != nil {
		s.logger.WithError(err).WithField("keys", failed).Error("failed to delete photos")
	}
}

func (s *Service) handleGetDonationHistory(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)

	filter := store.DonationFilter{DonorID: account.ID}
	summaries, page, err := s.donationPage(ctx, filter, r.URL.Query().Get("page"))
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to fetch donation history")
		s.internalServerError(w)
		return
	}

	out := make([]types.DonationSummary, 0, len(summaries))
	for _, d := range summaries {
		out = append(out, donationSummary(d))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"donations":  out,
		"pagination": page.Pagination(),
	})
}

// donationPage counts and fetches one clamped page of donations.
func (s *Service) donationPage(ctx context.Context, filter store.DonationFilter, rawPage string) ([]*types.DonationWithDonor, reporting.Page, error) {
	total, err := s.donations.CountDonations(ctx, filter)
	if err != nil {
		return nil, reporting.Page{}, err
	}

	page := reporting.Paginate(total, internal.DONATIONS_PER_PAGE, reporting.ParsePage(rawPage))

	donations, err := s.donations.ListDonations(ctx, filter, page.PerPage, page.Offset)
	if err != nil {
		return nil, reporting.Page{}, err
	}

	return donations, page, nil
}

func (s *Service) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	donation, ok := s.visibleDonation(w, r)
	if !ok {
		return
	}

	items, err := s.foodItems.ItemsByDonation(ctx, donation.ID)
	if err != nil {
		s.logger.WithError(err).WithField("donation_no", donation.DonationNo).Error("failed to fetch donation items")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": s.donationDetail(ctx, &donation.Donation, items),
	})
}

func (s *Service) handleGetDonationQRCode(w http.ResponseWriter, r *http.Request) {
	donation, ok := s.visibleDonation(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(donation.DonationNo, qrcode.Medium, 256)
	if err != nil {
		s.logger.WithError(err).WithField("donation_no", donation.DonationNo).Error("failed to encode qr code")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// visibleDonation loads the donation named in the path if the caller may
// see it. Donors only see their own; anything else is reported as missing.
func (s *Service) visibleDonation(w http.ResponseWriter, r *http.Request) (*types.DonationWithDonor, bool) {
	var ctx = r.Context()
	account := accountFromContext(ctx)

	donation, err := s.donations.Donation(ctx, r.PathValue("donationNo"))
	if err != nil {
		s.writeStoreError(w, err, "failed to fetch donation")
		return nil, false
	}

	if !account.IsStaff && donation.DonorID != account.ID {
		s.writeError(w, http.StatusNotFound, "Donation not found")
		return nil, false
	}

	return donation, true
}

func (s *Service) donationDetail(ctx context.Context, d *types.Donation, items []*types.FoodItem) types.DonationDetail {
	detail := types.DonationDetail{
		DonationNo:     d.DonationNo,
		Status:         d.Status,
		SubmissionDate: d.SubmittedAt.Format(submissionDateLayout),
		Contact:        d.Contact,
		Address:        d.Address,
		DeliveryMethod: d.DeliveryMethod.Label(),
		PreferredTime:  d.PreferredTime,
		Remarks:        d.Remarks,
		FoodItems:      make([]types.FoodItemDetail, 0, len(items)),
	}
	if d.PreferredDate != nil {
		detail.PreferredDate = utils.StringPtr(d.PreferredDate.Format(dateLayout))
	}
	if d.DeliveryMethod == types.DeliveryMethodSelf {
		detail.DropoffLocation = d.DropoffLocation
	}

	for _, item := range items {
		detail.FoodItems = append(detail.FoodItems, types.FoodItemDetail{
			ID:             item.ID,
			Name:           item.Name,
			Category:       item.Category.Label(),
			Quantity:       item.Quantity,
			Condition:      item.Condition.Label(),
			ExpirationDate: item.ExpirationDate.Format(dateLayout),
			Status:         item.Status,
			Photo:          s.photoURL(ctx, item.PhotoKey),
		})
	}

	return detail
}

func (s *Service) photoURL(ctx context.Context, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}

	url, err := s.storage.URL(ctx, *key)
	if err != nil {
		s.logger.WithError(err).WithField("key", *key).Warn("failed to resolve photo url")
		return nil
	}

	return &url
}

func (s *Service) publish(e realtime.Event) {
	e.At = s.now().UTC()
	s.hub.Publish(e)
	s.metrics.RealtimeEvent(e.Type)
}

func donationSummary(d *types.DonationWithDonor) types.DonationSummary {
	return types.DonationSummary{
		DonationNo:     d.DonationNo,
		SubmissionDate: d.SubmittedAt.Format(submissionDateLayout),
		Status:         d.Status,
	}
}

func donationListRow(d *types.DonationWithDonor) types.DonationListRow {
	return types.DonationListRow{
		DonationNo:  d.DonationNo,
		DonorName:   d.DonorName,
		DateCreated: d.SubmittedAt.Format(dateLayout),
		Status:      d.Status,
	}
}
