// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/cache"
	"cardpress/internal/models"
)

// sampleStudent is the stand-in used for previews when no student is
// given. Deterministic data keeps cached previews stable for a template
// version.
func sampleStudent() *models.Student {
	return &models.Student{
		ID:        uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:      "Sample Student",
		RollID:    "R-0000",
		ClassName: "Grade 5",
		Section:   "A",
	}
}

// Preview renders one side of a template as PNG without persisting
// anything. Sample-data previews are cached in Valkey per template
// version; previews for a real student bypass the cache.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	if a.comp == nil {
		writeError(w, apperr.New(apperr.KindRenderFailure, "object storage is not configured"))
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	side := models.Side(r.URL.Query().Get("side"))
	if side == "" {
		side = models.SideFront
	}
	if side != models.SideFront && side != models.SideBack {
		writeError(w, apperr.New(apperr.KindValidation, "invalid side %q", side))
		return
	}

	tpl, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	st := sampleStudent()
	cacheable := a.previews != nil
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid student_id: %q", raw))
			return
		}
		st, err = a.students.FindByID(studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		cacheable = false
	}

	key := cache.Key(tpl.ID, tpl.Version, string(side))
	if cacheable {
		if png, ok := a.previews.Get(r.Context(), key); ok {
			writePNG(w, png)
			return
		}
	}

	png, err := a.comp.Preview(r.Context(), tpl, side, st)
	if err != nil {
		writeError(w, err)
		return
	}

	if cacheable {
		a.previews.Set(r.Context(), key, png)
	}
	writePNG(w, png)
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
