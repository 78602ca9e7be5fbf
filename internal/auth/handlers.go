package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/scribehq/scribe/internal/metrics"
	"github.com/scribehq/scribe/internal/posts"
	"github.com/scribehq/scribe/internal/store"
)

// Mailer delivers magic-link emails. Production wires an SMTP implementation;
// development uses LogMailer.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, link string) error
}

// LogMailer prints magic links to the server log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendMagicLink(_ context.Context, email, link string) error {
	log.Printf("magic link for %s: %s", email, link)
	return nil
}

// Handlers implements the authentication endpoints: register, password login,
// logout, and the magic-link request/redeem pair.
type Handlers struct {
	sessions   *scs.SessionManager
	users      *store.UserStore
	magic      *MagicLinkStore
	mailer     Mailer
	baseURL    string
	linkTTL    time.Duration
	adminEmail string
}

// NewHandlers creates the auth Handlers. adminEmail, if non-empty, bootstraps
// that address to the admin role on registration.
func NewHandlers(sm *scs.SessionManager, us *store.UserStore, ms *MagicLinkStore, mailer Mailer, baseURL string, linkTTL time.Duration, adminEmail string) *Handlers {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Handlers{
		sessions:   sm,
		users:      us,
		magic:      ms,
		mailer:     mailer,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		linkTTL:    linkTTL,
		adminEmail: adminEmail,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

type sessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func toSessionUser(u *store.User) sessionUser {
	return sessionUser{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}

// Register creates an account with a password and opens a session.
// POST /api/v1/auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeAuthError(w, http.StatusBadRequest, "a valid email is required", "INVALID_EMAIL")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeAuthError(w, http.StatusBadRequest, "display name is required", "INVALID_DISPLAY_NAME")
		return
	}
	if len(req.Password) < 8 {
		writeAuthError(w, http.StatusBadRequest, "password must be at least 8 characters", "INVALID_PASSWORD")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	role := posts.RoleUser
	if h.adminEmail != "" && req.Email == h.adminEmail {
		role = posts.RoleAdmin
	}

	user, err := h.users.Create(r.Context(), req.Email, strings.TrimSpace(req.DisplayName), hash, role)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeAuthError(w, http.StatusConflict, "email is already registered", "EMAIL_TAKEN")
			return
		}
		log.Printf("auth: register %s: %v", req.Email, err)
		writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if err := h.openSession(r.Context(), user.ID); err != nil {
		log.Printf("auth: open session: %v", err)
		writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeAuthJSON(w, http.StatusCreated, toSessionUser(user))
}

// Login verifies a password and opens a session. Every failure returns the
// same 401 so callers can't probe which emails are registered.
// POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil || !user.PasswordHash.Valid || !CheckPassword(user.PasswordHash.String, req.Password) {
		writeAuthError(w, http.StatusUnauthorized, "invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	if err := h.openSession(r.Context(), user.ID); err != nil {
		log.Printf("auth: open session: %v", err)
		writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeAuthJSON(w, http.StatusOK, toSessionUser(user))
}

// Logout destroys the current session.
// POST /api/v1/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		log.Printf("auth: destroy session: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestMagicLink issues a single-use login link for the given email.
// Always answers 202 whether or not the email is registered.
// POST /api/v1/auth/magic-link
func (h *Handlers) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.users.GetByEmail(r.Context(), email)
	if err == nil {
		plaintext, hash, genErr := GenerateLoginToken()
		if genErr == nil {
			if _, createErr := h.magic.Create(r.Context(), user.ID, hash, h.linkTTL); createErr == nil {
				link := h.baseURL + "/api/v1/auth/magic-link/" + plaintext
				if mailErr := h.mailer.SendMagicLink(r.Context(), email, link); mailErr != nil {
					log.Printf("auth: send magic link to %s: %v", email, mailErr)
				}
				metrics.MagicLinksIssuedTotal.Inc()
			}
		}
	}

	w.WriteHeader(http.StatusAccepted)
}

// RedeemMagicLink consumes a login token and opens a session.
// GET /api/v1/auth/magic-link/{token}
func (h *Handlers) RedeemMagicLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	rec, err := h.magic.Consume(r.Context(), HashToken(token))
	if err != nil {
		writeAuthError(w, http.StatusUnauthorized, "login link is invalid or expired", "INVALID_TOKEN")
		return
	}

	user, err := h.users.GetByID(r.Context(), rec.UserID)
	if err != nil {
		writeAuthError(w, http.StatusUnauthorized, "login link is invalid or expired", "INVALID_TOKEN")
		return
	}

	if err := h.openSession(r.Context(), user.ID); err != nil {
		log.Printf("auth: open session: %v", err)
		writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	metrics.MagicLinksRedeemedTotal.Inc()
	writeAuthJSON(w, http.StatusOK, toSessionUser(user))
}

// openSession rotates the session token and binds it to userID. The rotation
// guards against session fixation.
func (h *Handlers) openSession(ctx context.Context, userID string) error {
	if err := h.sessions.RenewToken(ctx); err != nil {
		return err
	}
	h.sessions.Put(ctx, SessionUserIDKey, userID)
	return nil
}

func writeAuthJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
