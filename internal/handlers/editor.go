// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"cardpress/internal/apperr"
	"cardpress/internal/editor"
	"cardpress/internal/geometry"
	"cardpress/internal/models"
)

// sessionState is the editor state returned to clients after every
// editing operation that changes the whole layout.
type sessionState struct {
	Template   models.Template `json:"template"`
	ActiveSide models.Side     `json:"active_side"`
}

// session loads the open editor session for a template, or replies with
// a not-found error.
func (a *API) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return nil
	}
	s := a.sessions.Get(id)
	if s == nil {
		writeError(w, apperr.New(apperr.KindNotFound, "no open editor session for template %s", id))
		return nil
	}
	return s
}

func stateOf(s *editor.Session) sessionState {
	return sessionState{Template: s.Template(), ActiveSide: s.ActiveSide()}
}

// EditorOpen starts (or resumes) an editing session for a template. The
// session works on an in-memory copy; nothing touches the database until
// an explicit save.
func (a *API) EditorOpen(w http.ResponseWriter, r *http.Request) {
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

	s := a.sessions.Open(tpl)
	writeJSON(w, http.StatusOK, stateOf(s))
}

// EditorState returns the current session state without modifying it.
func (a *API) EditorState(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(s))
}

// EditorClose discards the session and all unsaved edits.
func (a *API) EditorClose(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	a.sessions.Close(id)
	writeJSON(w, http.StatusOK, map[string]any{"closed": true})
}

// EditorSave persists the session's layout through the optimistic
// concurrency check and reopens the session on the saved state.
func (a *API) EditorSave(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	tpl := s.Template()
	saved, err := a.templates.Update(&tpl)
	if err != nil {
		writeError(w, err)
		return
	}

	// Rebase the session on the saved version so follow-up edits carry
	// the new version number.
	a.sessions.Close(saved.ID)
	a.sessions.Open(saved)
	a.invalidatePreviews(r.Context(), saved.ID)

	writeJSON(w, http.StatusOK, saved)
}

type switchSideRequest struct {
	Side models.Side `json:"side"`
}

// EditorSwitchSide changes which card side the session is editing.
// Switching to an undefined back side is rejected.
func (a *API) EditorSwitchSide(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	var req switchSideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.SwitchSide(req.Side); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(s))
}

type addElementRequest struct {
	Kind     models.ElementKind `json:"kind"`
	X        float64            `json:"x_px"`
	Y        float64            `json:"y_px"`
	Override bool               `json:"override_snap"`
}

// EditorAddElement drops a new element of the given kind at a pixel
// position on the active side. Default size and style come from the
// element registry; position goes through snap and clamp like any drag.
func (a *API) EditorAddElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	var req addElementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	el, err := s.AddElement(req.Kind, geometry.Rect{X: req.X, Y: req.Y}, req.Override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, el)
}

type moveElementRequest struct {
	X        float64 `json:"x_px"`
	Y        float64 `json:"y_px"`
	Override bool    `json:"override_snap"`
}

// EditorMoveElement moves an element to a new pixel origin. Drags and
// programmatic moves share this path, so both get identical snapping.
func (a *API) EditorMoveElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	elementID, err := uuidParam(r, "elementID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req moveElementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	el, err := s.MoveElement(elementID, req.X, req.Y, req.Override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

type resizeElementRequest struct {
	X        float64 `json:"x_px"`
	Y        float64 `json:"y_px"`
	Width    float64 `json:"width_px"`
	Height   float64 `json:"height_px"`
	Override bool    `json:"override_snap"`
}

// EditorResizeElement resizes an element to a new pixel box.
func (a *API) EditorResizeElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	elementID, err := uuidParam(r, "elementID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req resizeElementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	box := geometry.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	el, err := s.ResizeElement(elementID, box, req.Override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// EditorRestyleElement replaces an element's style wholesale. Allowed on
// locked templates, since styling is not structural.
func (a *API) EditorRestyleElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	elementID, err := uuidParam(r, "elementID")
	if err != nil {
		writeError(w, err)
		return
	}

	var style models.ElementStyle
	if err := decodeJSON(r, &style); err != nil {
		writeError(w, err)
		return
	}

	el, err := s.RestyleElement(elementID, style)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// EditorDeleteElement removes an element from the active side.
func (a *API) EditorDeleteElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	elementID, err := uuidParam(r, "elementID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.DeleteElement(elementID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// EditorDuplicateElement clones an element with a fresh id, offset by one
// grid step so the copy is visible next to the original.
func (a *API) EditorDuplicateElement(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	elementID, err := uuidParam(r, "elementID")
	if err != nil {
		writeError(w, err)
		return
	}

	el, err := s.DuplicateElement(elementID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, el)
}

// EditorSetGrid replaces the session's grid and snapping settings.
func (a *API) EditorSetGrid(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	var grid models.GridSettings
	if err := decodeJSON(r, &grid); err != nil {
		writeError(w, err)
		return
	}

	s.SetGrid(grid)
	writeJSON(w, http.StatusOK, stateOf(s))
}

// EditorOpenEnlarged hands out a snapshot of the layout for an enlarged
// editing surface. Only one enlarged surface may be open per session.
func (a *API) EditorOpenEnlarged(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	layout, err := s.OpenEnlarged()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layout": layout})
}

type closeEnlargedRequest struct {
	Layout *models.TemplateLayout `json:"layout"`
	Save   bool                   `json:"save"`
}

// EditorCloseEnlarged closes the enlarged surface. With save, the final
// snapshot replaces the session layout wholesale; otherwise the snapshot
// is discarded and the session keeps its state from before the open.
func (a *API) EditorCloseEnlarged(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}

	var req closeEnlargedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.CloseEnlarged(req.Layout, req.Save); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(s))
}
