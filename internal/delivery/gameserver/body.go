package gameserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

type playerIDKey struct{}

func withPlayerID(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerIDKey{}, playerID)
}

func playerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(playerIDKey{}).(string)
	return id, ok
}

// RequirePlayerID validates the JSON body and stores player_id in the
// request context.
func RequirePlayerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID, errcode, message := parsePlayerID(r.Body)
		if errcode != "" {
			writeError(w, http.StatusBadRequest, errcode, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPlayerID(r.Context(), playerID)))
	})
}

func parsePlayerID(body io.Reader) (playerID, errcode, message string) {
	if body == nil {
		return "", errcodeNoBody, "request body is required"
	}
	raw, err := io.ReadAll(body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return "", errcodeNoBody, "request body is required"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return "", errcodeNoBody, "request body must be a JSON object"
	}

	value, ok := fields["player_id"]
	if !ok {
		return "", errcodeNoPlayerID, "player_id is required"
	}
	if len(value) == 0 || value[0] != '"' {
		return "", errcodePlayerIDType, "player_id must be a string"
	}
	if err := json.Unmarshal(value, &playerID); err != nil {
		return "", errcodePlayerIDType, "player_id must be a string"
	}
	if playerID == "" {
		return "", errcodeNoPlayerID, "player_id must not be empty"
	}
	return playerID, "", ""
}
