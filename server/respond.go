package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"audiochan/core/result"
	"audiochan/logger"
)

// maxBodyBytes bounds JSON bodies; pictures arrive base64 encoded.
const maxBodyBytes = 8 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind result.Kind) int {
	switch kind {
	case result.KindBadRequest:
		return http.StatusBadRequest
	case result.KindNotFound:
		return http.StatusNotFound
	case result.KindForbidden:
		return http.StatusForbidden
	case result.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err. Internal failures are logged; their text never
// reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := result.KindOf(err)
	status := statusFor(kind)
	if kind == result.KindInternal {
		logger.Error("Request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int64("userId", CallerID(r.Context())),
			logger.ErrorField(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorBody{Code: kind.String(), Message: result.Message(err)}})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return result.BadRequest("Request body is too large.")
		case errors.Is(err, io.EOF):
			return result.BadRequest("Request body is required.")
		default:
			return result.BadRequest("Invalid request body.")
		}
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
