// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"time"

	"cardpress/internal/elements"
)

// ElementKinds returns the element registry: every placeable kind with
// its label, default size and default style. Editor clients build their
// palette from this instead of hardcoding kinds.
func (a *API) ElementKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"kinds":        elements.All(),
		"bound_fields": elements.BoundFields(),
	})
}

// Health reports service liveness and the state of optional backends.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}

	if a.valkey != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.valkey.Ping(ctx).Err(); err != nil {
			body["cache"] = "down"
		} else {
			body["cache"] = "ok"
		}
	}
	if a.storageClient != nil {
		body["storage"] = "configured"
	}

	writeJSON(w, http.StatusOK, body)
}
