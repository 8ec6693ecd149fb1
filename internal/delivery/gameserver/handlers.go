package gameserver

import (
	"context"
	"net/http"
)

func (s *Server) handleIsValidPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFromContext(r.Context())
	if !ok {
		writeFailClosed(w)
		return
	}

	result, err := s.services.ValidationService.Validate(r.Context(), playerID)
	if err != nil {
		s.logger.Error("Validation of player %s failed: %v", playerID, err)
		s.metrics.observeOutcome(outcomeError)
		writeFailClosed(w)
		return
	}

	if result.Valid {
		s.metrics.observeOutcome(outcomeValid)
	} else {
		s.metrics.observeOutcome(result.Reason)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, errcodeInternal, "missing player id")
		return
	}

	code, err := s.services.LinkService.RequestCode(r.Context(), playerID)
	if err != nil {
		s.logger.Error("Issuing code for player %s failed: %v", playerID, err)
		writeError(w, http.StatusInternalServerError, errcodeInternal, "could not issue auth code")
		return
	}

	writeJSON(w, http.StatusOK, codeResponse{AuthCode: code})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
