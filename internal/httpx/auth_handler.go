package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserStore is the user persistence surface implemented by *auth.Repo.
type UserStore interface {
	Create(ctx context.Context, p auth.CreateUserParams) (auth.User, error)
	GetByEmail(ctx context.Context, email string) (auth.User, error)
	GetByID(ctx context.Context, id string) (auth.User, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	FindIDByCode(ctx context.Context, code string) (string, error)
}

type AuthHandler struct {
	Users      UserStore
	Maker      *auth.TokenMaker
	AdminEmail string
	SiteURL    string
}

var registerEmailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type RegisterReq struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	ReferringAffiliateID string `json:"referringAffiliateId"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r *chi.Mux, requireAuth func(http.Handler) http.Handler) {
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/login", h.login)
	r.With(requireAuth).Get("/api/auth/profile", h.profile)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Please provide name, email, and password.")
		return
	}
	if !registerEmailRe.MatchString(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email format.")
		return
	}
	if len(req.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters long.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	code, err := h.uniqueAffiliateCode(ctx)
	if err != nil {
		log.Error().Err(err).Msg("affiliate code generation failed")
		writeMessage(w, http.StatusInternalServerError, "Could not generate unique affiliate ID.")
		return
	}

	// An unknown referral code never blocks registration; the signup just
	// proceeds unreferred.
	var referredBy *string
	if req.ReferringAffiliateID != "" {
		id, err := h.Users.FindIDByCode(ctx, req.ReferringAffiliateID)
		switch {
		case err == nil:
			referredBy = &id
		case errors.Is(err, auth.ErrUserNotFound):
			log.Warn().Str("affiliate_code", req.ReferringAffiliateID).Msg("referral code not found")
		default:
			log.Error().Err(err).Msg("referral code lookup failed")
		}
	}

	u, err := h.Users.Create(ctx, auth.CreateUserParams{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		AffiliateCode: code,
		ReferredBy:    referredBy,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeMessage(w, http.StatusConflict, "Email already registered.")
			return
		}
		log.Error().Err(err).Msg("user insert failed")
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "User registered successfully.",
		"userId":      u.ID,
		"affiliateId": u.AffiliateCode,
	})
}

func (h *AuthHandler) uniqueAffiliateCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 5; attempts++ {
		code := auth.NewAffiliateCode()
		exists, err := h.Users.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate unique affiliate code")
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Please provide email and password.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Error logging in.")
		return
	}
	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	// Admin-ness is decided here, once, and carried as a capability in the
	// token; nothing downstream compares emails.
	isAdmin := u.Email == h.AdminEmail
	token, err := h.Maker.Create(u, isAdmin)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error logging in.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Logged in successfully.",
		"token":       token,
		"userId":      u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"affiliateId": u.AffiliateCode,
		"isAdmin":     isAdmin,
	})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "User profile not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Error fetching profile.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"affiliateId":   u.AffiliateCode,
		"affiliateLink": fmt.Sprintf("%s/?ref=%s", h.SiteURL, u.AffiliateCode),
		"isAdmin":       claims.IsAdmin,
	})
}
