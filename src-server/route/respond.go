package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"calendar/src-server/model"
)

type errorRespBody struct {
	Error string `json:"error"`
}

// versionReqBody is the body of every DELETE request.
type versionReqBody struct {
	Version int64 `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("can't write response body", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorRespBody{Error: fmt.Sprintf(format, args...)})
}

// StatusOf maps a store failure kind to an HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrIllegalEntity):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		// storage details stay in the log
		slog.Error("request failed", "error", err)
		writeMessage(w, status, "internal error")
		return
	}
	writeMessage(w, status, "%s", err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: %s", err)
		return false
	}
	return true
}

// pathID reads the {id} wildcard; ids are positive.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return parseID(w, "id", r.PathValue("id"))
}

func parseID(w http.ResponseWriter, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid %s %q", name, raw)
		return 0, false
	}
	return id, true
}

// checkBodyID rejects a body whose id disagrees with the path.
func checkBodyID(w http.ResponseWriter, bodyID, pathID int64) bool {
	if bodyID != 0 && bodyID != pathID {
		writeMessage(w, http.StatusBadRequest, "body id %d does not match path id %d", bodyID, pathID)
		return false
	}
	return true
}
