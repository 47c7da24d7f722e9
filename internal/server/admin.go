package server

import (
	"net/http"

	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/go-chi/chi/v5"
)

type withdrawalStatusRequest struct {
	Status models.WithdrawalStatus `json:"status"`
}

type settleEntryRequest struct {
	UserId string             `json:"user_id"`
	Status models.EntryStatus `json:"status"`
}

// requireAdmin runs after Authenticate. The role is read from the store on every
// request, not from the token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.rewards.RequireAdmin(r.Context(), currentUser(r)); err != nil {
			writeServiceError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAdminWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := models.WithdrawalStatus(r.URL.Query().Get("status"))
	records, err := s.rewards.ListWithdrawals(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAdminUpdateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	withdrawal, err := s.rewards.UpdateWithdrawalStatus(r.Context(), chi.URLParam(r, "withdrawalId"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":     withdrawal.Id,
		"status": string(withdrawal.Status),
	})
}

func (s *Server) handleAdminSettleEntry(w http.ResponseWriter, r *http.Request) {
	var req settleEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entryId := chi.URLParam(r, "entryId")
	if err := s.rewards.SettleEntry(r.Context(), req.UserId, entryId, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":     entryId,
		"status": string(req.Status),
	})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	balances, err := s.rewards.GetUserBalances(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}
