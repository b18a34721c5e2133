// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/batch"
)

type generateRequest struct {
	TemplateID uuid.UUID `json:"template_id"`
	StudentID  uuid.UUID `json:"student_id"`
}

// Generate renders and persists one student's card from the current
// version of a template. The card row is pinned to the template version
// it was rendered with.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	if a.comp == nil {
		writeError(w, apperr.New(apperr.KindRenderFailure, "object storage is not configured"))
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tpl, err := a.templates.FindByID(req.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := a.students.FindByID(req.StudentID)
	if err != nil {
		writeError(w, err)
		return
	}

	card, err := a.comp.Generate(r.Context(), tpl, st)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

type generateBatchRequest struct {
	TemplateID uuid.UUID   `json:"template_id"`
	StudentIDs []uuid.UUID `json:"student_ids,omitempty"`
	ClassID    *uuid.UUID  `json:"class_id,omitempty"`
}

type batchReport struct {
	Total     int            `json:"total"`
	Generated int            `json:"generated"`
	Failed    int            `json:"failed"`
	Results   []batch.Result `json:"results"`
}

// GenerateBatch renders cards for an explicit list of students, or for a
// whole class roster when class_id is given instead. Failures are
// per-student: one broken photo does not abort the run, and the report
// carries one entry per requested student.
func (a *API) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	if a.pipeline == nil {
		writeError(w, apperr.New(apperr.KindRenderFailure, "object storage is not configured"))
		return
	}

	var req generateBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tpl, err := a.templates.FindByID(req.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := req.StudentIDs
	if req.ClassID != nil {
		roster, err := a.students.ListByClass(*req.ClassID)
		if err != nil {
			writeError(w, err)
			return
		}
		ids = make([]uuid.UUID, 0, len(roster))
		for _, st := range roster {
			ids = append(ids, st.ID)
		}
	}
	if len(ids) == 0 {
		writeError(w, apperr.New(apperr.KindValidation, "no students to generate for"))
		return
	}

	results := a.pipeline.Run(r.Context(), tpl, ids)

	report := batchReport{Total: len(results), Results: results}
	for _, res := range results {
		if res.Success {
			report.Generated++
		} else {
			report.Failed++
		}
	}
	writeJSON(w, http.StatusOK, report)
}
