package server

import (
	"net/http"

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

type withdrawalRequest struct {
	Amount decimal.Decimal         `json:"amount"`
	Method models.WithdrawalMethod `json:"method"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.rewards.RegisterUser(r.Context(), api.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.respondWithToken(w, http.StatusCreated, profile)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	profile, err := s.rewards.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServiceError(w, err)
		return
	}
	s.respondWithToken(w, http.StatusOK, profile)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, profile *models.Profile) {
	token, err := s.tokens.Issue(profile)
	if err != nil {
		zap.L().Error("Failed to issue token", zap.String("user_id", profile.Id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.tokens.setCookie(w, token)
	writeJSON(w, status, authResponse{Token: token, User: profile})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.rewards.GetProfile(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	view, err := s.rewards.GetWalletSummary(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	records, err := s.rewards.GetLedger(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCheckinStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.rewards.GetCheckinStatus(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCheckinToday(w http.ResponseWriter, r *http.Request) {
	status, err := s.rewards.CheckinToday(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	records, err := s.rewards.GetWithdrawals(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.rewards.RequestWithdrawal(r.Context(), currentUser(r), req.Amount, req.Method)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			result = &models.WithdrawalResult{Success: false, Error: "internal error"}
		}
		writeJSON(w, status, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rewards.HealthCheck(r.Context()); err != nil {
		zap.L().Warn("Health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func currentUser(r *http.Request) string {
	userId, _ := models.GetUserId(r.Context())
	return userId
}
