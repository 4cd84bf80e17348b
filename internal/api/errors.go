package api

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"dogwalk/internal/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error codes of the public envelope. Clients match on these, so they
// are part of the wire contract.
const (
	codeBadRequest      = "badRequest"
	codeInvalidArgument = "invalidArgument"
	codeInvalidMethod   = "invalidMethod"
	codeInvalidRequest  = "invalidRequest"
	codeInvalidToken    = "invalidToken"
	codeMapNotFound     = "mapNotFound"
	codeUnknownToken    = "unknownToken"
	codeInternalError   = "internalServerError"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError carries a ready-to-send failure through helper returns.
type apiError struct {
	status  int
	code    string
	message string
}

// writeJSON emits an API response. Every API response is JSON and must
// not be cached: state changes every tick.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeAPIError(w http.ResponseWriter, e *apiError) {
	writeError(w, e.status, e.code, e.message)
}

// writeGameError translates registry failures into the public taxonomy.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownToken):
		writeError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
	case errors.Is(err, game.ErrMapNotFound):
		writeError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
	case errors.Is(err, game.ErrInvalidName):
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid name")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
	}
}
