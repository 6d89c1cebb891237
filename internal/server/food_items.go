package server

import (
	"net/http"

	"foodshare/internal"
	"foodshare/internal/realtime"
	"foodshare/internal/reporting"
	"foodshare/pkg/types"
)

func (s *Service) handleGetFoodItems(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	total, err := s.foodItems.CountItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count food items")
		s.internalServerError(w)
		return
	}

	page := reporting.Paginate(total, internal.FOOD_ITEMS_PER_PAGE, reporting.ParsePage(r.URL.Query().Get("page")))

	listings, err := s.foodItems.ListItems(ctx, page.PerPage, page.Offset)
	if err != nil {
		s.logger.WithError(err).Error("failed to list food items")
		s.internalServerError(w)
		return
	}

	items := make([]types.FoodItemRow, 0, len(listings))
	for _, l := range listings {
		items = append(items, types.FoodItemRow{
			ID:             l.ID,
			Name:           l.Name,
			Category:       l.Category,
			Quantity:       l.Quantity,
			Condition:      l.Condition,
			ExpirationDate: l.ExpirationDate.Format(dateLayout),
			PhotoURL:       s.photoURL(ctx, l.PhotoKey),
			DonationNo:     l.DonationNo,
			DonorName:      l.DonorName,
			Status:         l.Status,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"items":        items,
		"current_page": page.Number,
		"total_pages":  page.TotalPages,
	})
}

func (s *Service) handlePostFoodItemStatus(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	account := accountFromContext(ctx)
	itemID := r.PathValue("itemID")

	raw, err := s.decodeStatus(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	status := types.FoodItemStatus(raw)
	if !status.Valid() {
		s.writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	previous, changed, err := s.foodItems.UpdateStatus(ctx, itemID, status)
	if err != nil {
		s.writeStoreError(w, err, "failed to update food item status")
		return
	}

	if changed {
		s.metrics.FoodItemTransition(string(previous), string(status))
		s.publish(realtime.Event{
			Type:     realtime.EventFoodItemStatusChanged,
			ItemID:   itemID,
			Status:   string(status),
			Previous: string(previous),
			Actor:    account.Username,
		})
		s.logger.
			WithField("item_id", itemID).
			WithField("from", previous).
			WithField("to", status).
			WithField("actor", account.ID).
			Info("food item status changed")
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"changed": changed,
	})
}
