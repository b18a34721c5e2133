// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
)

// ClassesList returns all active classes.
func (a *API) ClassesList(w http.ResponseWriter, r *http.Request) {
	classes, err := a.classes.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

// StudentsList returns students, optionally filtered to one class roster
// via the class_id query parameter.
func (a *API) StudentsList(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("class_id"); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid class_id: %q", raw))
			return
		}
		students, err := a.students.ListByClass(classID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"students": students})
		return
	}

	students, err := a.students.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": students})
}

// StudentGet returns one student by id.
func (a *API) StudentGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := a.students.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
