package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	t "github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/auth"
)

type envelope map[string]any

const maxBodyBytes = 1 << 20

// writeJSON writes data indented with a trailing newline. headers are copied first.
func writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	maps.Copy(w.Header(), headers)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(js, '\n'))
	return err
}

// readJSON decodes exactly one JSON object of at most maxBodyBytes into dst.
// Unknown keys are rejected. Errors are phrased for the client.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return describeDecodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func describeDecodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
		invalidErr  *json.InvalidUnmarshalError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeErr.Offset)
	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		// encoding/json has no typed error for this (golang/go#29035)
		return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesErr.Limit)
	case errors.As(err, &invalidErr):
		panic(err)
	default:
		return err
	}
}

// GetCode maps domain and auth errors to HTTP statuses.
func GetCode(err error) int {
	var lookup *t.LookupError
	switch {
	case errors.As(err, &lookup):
		if lookup.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	case IsOneOf(err, t.ErrRideNotFound, t.ErrUserNotFound, t.ErrDriverNotFound):
		return http.StatusNotFound
	case IsOneOf(err, t.ErrAcceptanceConflict, t.ErrTransitionRejected, t.ErrRideCannotBeCancelled):
		return http.StatusConflict
	case IsOneOf(err, auth.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrExpToken):
		return http.StatusUnauthorized
	case IsOneOf(err, auth.ErrActionForbidden, t.ErrNotDriver):
		return http.StatusForbidden
	case IsOneOf(err, t.ErrSubmission):
		return http.StatusBadRequest
	case IsOneOf(err, t.ErrSessionClosed, t.ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsOneOf reports whether err matches any of targets.
func IsOneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
