package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/affiliate"
	"github.com/go-chi/chi/v5"
)

// AffiliateStore is implemented by *affiliate.Repo.
type AffiliateStore interface {
	Stats(ctx context.Context, userID string) (affiliate.Stats, error)
	ListReferrals(ctx context.Context, userID string) ([]affiliate.ReferralOrderRow, error)
	ListAllReferrals(ctx context.Context) ([]affiliate.AdminReferralRow, error)
	UpdateReferralStatus(ctx context.Context, referralID string, status affiliate.Status) error
}

type AffiliateHandler struct {
	Store   AffiliateStore
	SiteURL string
}

func (h *AffiliateHandler) Register(r *chi.Mux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.With(requireAuth).Get("/api/affiliate/stats", h.stats)
	r.With(requireAuth).Get("/api/affiliate/referrals", h.referrals)
	r.With(requireAuth, requireAdmin).Get("/api/admin/all-referrals", h.allReferrals)
	r.With(requireAuth, requireAdmin).Put("/api/admin/referrals/{id}/status", h.updateStatus)
}

func (h *AffiliateHandler) stats(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Store.Stats(ctx, claims.UserID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch affiliate statistics.")
		return
	}
	st.AffiliateLink = fmt.Sprintf("%s/?ref=%s", h.SiteURL, claims.AffiliateCode)
	writeJSON(w, http.StatusOK, st)
}

func (h *AffiliateHandler) referrals(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Store.ListReferrals(ctx, claims.UserID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch affiliate referrals.")
		return
	}
	if rows == nil {
		rows = []affiliate.ReferralOrderRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AffiliateHandler) allReferrals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Store.ListAllReferrals(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch all affiliate referrals.")
		return
	}
	if rows == nil {
		rows = []affiliate.AdminReferralRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AffiliateHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	referralID := chi.URLParam(r, "id")

	var req struct {
		Status affiliate.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !affiliate.ValidStatus(req.Status) {
		writeMessage(w, http.StatusBadRequest, "Invalid status provided.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.UpdateReferralStatus(ctx, referralID, req.Status); err != nil {
		if errors.Is(err, affiliate.ErrReferralNotFound) {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Referral with ID %s not found.", referralID))
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to update referral status.")
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Referral ID %s status updated to %s.", referralID, req.Status))
}
