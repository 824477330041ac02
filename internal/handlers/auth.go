package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/unifyhq/unify/internal/storage"
	"github.com/unifyhq/unify/libs/auth"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	accounts *storage.AccountRepository
	secret   string
	logger   *slog.Logger
}

func NewAuthHandler(accounts *storage.AccountRepository, secret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, secret: secret, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	acct, err := h.accounts.Create(r.Context(), req.Email, string(hash))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	token, err := h.issueToken(acct.ID, acct.Email)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "account registered", "account_id", acct.ID)
	writeJSON(w, http.StatusCreated, tokenResponse{
		Token:   token,
		Account: accountResponse{ID: acct.ID, Email: acct.Email},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	acct, err := h.accounts.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		// Same response for unknown email and bad password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issueToken(acct.ID, acct.Email)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:   token,
		Account: accountResponse{ID: acct.ID, Email: acct.Email},
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	acct, err := h.accounts.GetByID(r.Context(), AccountIDFromContext(r.Context()))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{ID: acct.ID, Email: acct.Email})
}

func (h *AuthHandler) issueToken(accountID, email string) (string, error) {
	now := time.Now()
	return auth.Sign(auth.Claims{
		Sub:   accountID,
		Email: email,
		Iat:   now.Unix(),
		Exp:   now.Add(tokenTTL).Unix(),
	}, h.secret)
}
