package gameserver

import (
	"encoding/json"
	"net/http"

	"tiergate/internal/models"
)

const (
	errcodeNoBody       = "NO_BODY"
	errcodeNoPlayerID   = "NO_PLAYER_ID"
	errcodePlayerIDType = "PLAYER_ID_TYPE"
	errcodeInternal     = "INTERNAL"
)

type errorResponse struct {
	Errcode string `json:"errcode"`
	Message string `json:"message"`
}

type codeResponse struct {
	AuthCode string `json:"auth_code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errcode, message string) {
	writeJSON(w, status, errorResponse{Errcode: errcode, Message: message})
}

// writeFailClosed answers with a denial and a 500 so monitoring sees the
// failure while the gameserver keeps the player out.
func writeFailClosed(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, models.ValidationResult{Valid: false})
}
