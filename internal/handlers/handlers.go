// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the cardpress API.
// Handlers are grouped by concern (templates, editor, generation, assets)
// and receive their dependencies through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cardpress/internal/apperr"
	"cardpress/internal/batch"
	"cardpress/internal/cache"
	"cardpress/internal/compositor"
	"cardpress/internal/editor"
	"cardpress/internal/storage"
	"cardpress/internal/store"
)

// API groups all HTTP handlers and their dependencies.
type API struct {
	templates     *store.TemplateStore
	versions      *store.TemplateVersionStore
	students      *store.StudentStore
	classes       *store.ClassStore
	cards         *store.CardStore
	comp          *compositor.Compositor
	pipeline      *batch.Pipeline
	sessions      *editor.Manager
	storageClient *storage.Client
	previews      *cache.PreviewCache
	valkey        *redis.Client
}

// NewAPI creates the API handler group. storageClient, previews and valkey
// may be nil when S3 or Valkey is not configured; the affected endpoints
// degrade gracefully.
func NewAPI(
	templates *store.TemplateStore,
	versions *store.TemplateVersionStore,
	students *store.StudentStore,
	classes *store.ClassStore,
	cards *store.CardStore,
	comp *compositor.Compositor,
	pipeline *batch.Pipeline,
	sessions *editor.Manager,
	storageClient *storage.Client,
	previews *cache.PreviewCache,
	valkey *redis.Client,
) *API {
	return &API{
		templates:     templates,
		versions:      versions,
		students:      students,
		classes:       classes,
		cards:         cards,
		comp:          comp,
		pipeline:      pipeline,
		sessions:      sessions,
		storageClient: storageClient,
		previews:      previews,
		valkey:        valkey,
	}
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps an error to an HTTP status via its apperr kind and
// writes the JSON error body. Unclassified errors become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		writeJSON(w, statusFor(ae.Kind), errorResponse{Error: ae.Msg})
		return
	}
	slog.Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// statusFor translates an error kind into an HTTP status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindResourceTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConcurrentModification:
		return http.StatusConflict
	case apperr.KindRenderFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body: %v", err)
	}
	return nil
}

// intParam extracts and parses an integer URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "invalid %s: %q", name, raw)
	}
	return n, nil
}

// uuidParam extracts and parses a UUID URL parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid %s: %q", name, raw)
	}
	return id, nil
}
