package api

import (
	"net/http"
	"strings"

	"dogwalk/internal/game"
)

const bearerPrefix = "Bearer "

// bearerToken pulls the player token out of the Authorization header.
// The header must be exactly "Bearer " plus 32 hex characters.
func bearerToken(r *http.Request) (game.Token, *apiError) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, bearerPrefix) {
		return "", &apiError{
			status:  http.StatusUnauthorized,
			code:    codeInvalidToken,
			message: "Authorization header is missing",
		}
	}
	tok, ok := game.ParseToken(strings.TrimPrefix(h, bearerPrefix))
	if !ok {
		return "", &apiError{
			status:  http.StatusUnauthorized,
			code:    codeInvalidToken,
			message: "Token has an invalid length",
		}
	}
	return tok, nil
}
