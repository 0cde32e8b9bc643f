package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	errx "github.com/tryluxor/server/internal/core/error"
)

const maxBodyBytes = 1 << 20 // 1 MB

var (
	errNotFoundRoute    = errx.NotFound("route not found")
	errMethodNotAllowed = errx.New(nil, http.StatusMethodNotAllowed, "method not allowed")
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errx.BadRequest(err, "request body is required")
		}
		return errx.BadRequest(err, "invalid request body")
	}
	return nil
}

func queryInt(r *http.Request, key string, dst *int) error {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return errx.BadRequest(err, fmt.Sprintf("%s must be an integer", key))
	}
	*dst = v
	return nil
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errx.BadRequest(err, fmt.Sprintf("%s must be a number", key))
	}
	return &v, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errx.BadRequest(err, fmt.Sprintf("%s must be a boolean", key))
	}
	return &v, nil
}
