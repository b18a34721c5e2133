// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// templateRequest is the JSON body for template create and update.
type templateRequest struct {
	Name            string                `json:"name"`
	Layout          models.TemplateLayout `json:"layout"`
	AssignedClasses []uuid.UUID           `json:"assigned_classes"`
	Version         int                   `json:"version,omitempty"`
}

// TemplatesList returns all active templates.
func (a *API) TemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := a.templates.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// TemplateCreate creates a new template at version 1.
func (a *API) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tpl, err := a.templates.Create(req.Name, req.Layout, req.AssignedClasses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// TemplateGet returns a single template by id.
func (a *API) TemplateGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	tpl, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// TemplateUpdate saves a template. The request carries the version the
// caller loaded; a mismatch with the stored version is a conflict. A
// structural layout change bumps the version and snapshots the prior
// state; a metadata-only save does not.
func (a *API) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tpl := &models.Template{
		ID:              id,
		Name:            req.Name,
		Layout:          req.Layout,
		AssignedClasses: req.AssignedClasses,
		Version:         req.Version,
	}
	saved, err := a.templates.Update(tpl)
	if err != nil {
		writeError(w, err)
		return
	}

	a.invalidatePreviews(r.Context(), id)
	writeJSON(w, http.StatusOK, saved)
}

// TemplateDelete removes a template. Templates referenced by generated
// cards are deactivated instead of deleted so card provenance survives.
func (a *API) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := a.templates.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	a.sessions.Close(id)
	a.invalidatePreviews(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// TemplateLock marks a template as locked. Locked templates refuse
// structural edits but still allow styling changes in the editor.
func (a *API) TemplateLock(w http.ResponseWriter, r *http.Request) {
	a.setLocked(w, r, true)
}

// TemplateUnlock clears the locked flag.
func (a *API) TemplateUnlock(w http.ResponseWriter, r *http.Request) {
	a.setLocked(w, r, false)
}

func (a *API) setLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := a.templates.SetLocked(id, locked); err != nil {
		writeError(w, err)
		return
	}
	tpl, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// TemplateVersions lists the frozen snapshots of a template, newest first.
func (a *API) TemplateVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	// Surface not-found before returning an empty history.
	if _, err := a.templates.FindByID(id); err != nil {
		writeError(w, err)
		return
	}

	versions, err := a.versions.ListByTemplateID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// TemplateVersionGet returns one frozen snapshot.
func (a *API) TemplateVersionGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	version, err := intParam(r, "version")
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := a.versions.FindByVersion(id, version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// TemplateRestore saves a historical layout as the new current state.
// The restore is itself a structural save: the current layout gets
// snapshotted and the version advances, keeping the history append-only.
func (a *API) TemplateRestore(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	version, err := intParam(r, "version")
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := a.versions.FindByVersion(id, version)
	if err != nil {
		writeError(w, err)
		return
	}
	current, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	current.Layout = snap.Layout
	saved, err := a.templates.Update(current)
	if err != nil {
		writeError(w, err)
		return
	}

	a.sessions.Close(id)
	a.invalidatePreviews(r.Context(), id)
	writeJSON(w, http.StatusOK, saved)
}

// invalidatePreviews drops cached previews for a template. A no-op when
// the preview cache is not configured.
func (a *API) invalidatePreviews(ctx context.Context, id uuid.UUID) {
	if a.previews != nil {
		a.previews.InvalidateTemplate(ctx, id)
	}
}
