package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
)

type playlistError struct {
	status int
	msg    string
}

func (e *playlistError) Error() string {
	return e.msg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writePlaylistError(w http.ResponseWriter, err error) {
	var pe *playlistError
	if errors.As(err, &pe) {
		writeError(w, pe.status, pe.msg)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
