// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package batch drives the compositor across a list of students for one
// template. Processing is sequential — one decoded background and one
// in-flight raster at a time — which bounds peak memory for an
// operator-triggered, human-timescale job. A failing student never aborts
// the batch; every requested student gets exactly one report entry.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// Generator renders and persists one student's card. Implemented by
// compositor.Compositor.
type Generator interface {
	Generate(ctx context.Context, t *models.Template, st *models.Student) (*models.GeneratedCard, error)
}

// StudentSource resolves student ids to records. Implemented by
// store.StudentStore.
type StudentSource interface {
	FindByID(id uuid.UUID) (*models.Student, error)
}

// Result is one student's outcome in a batch report. The aggregate is a
// transient report returned to the caller, never a persisted entity.
type Result struct {
	StudentID uuid.UUID `json:"student_id"`
	Success   bool      `json:"success"`
	FrontKey  string    `json:"front_key,omitempty"`
	BackKey   string    `json:"back_key,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Pipeline runs card generation batches.
type Pipeline struct {
	students StudentSource
	gen      Generator
}

// New creates a Pipeline with its collaborators injected.
func New(students StudentSource, gen Generator) *Pipeline {
	return &Pipeline{students: students, gen: gen}
}

// Run generates cards for every listed student, in order. The returned
// report has one entry per requested id. Students already rendered keep
// their GeneratedCard rows regardless of later failures; a cancelled
// context stops submitting further students but marks the remainder as
// failed rather than truncating the report.
func (p *Pipeline) Run(ctx context.Context, t *models.Template, studentIDs []uuid.UUID) []Result {
	start := time.Now()
	results := make([]Result, 0, len(studentIDs))
	failures := 0

	for _, id := range studentIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{StudentID: id, Error: fmt.Sprintf("batch cancelled: %v", err)})
			failures++
			continue
		}
		res := p.runOne(ctx, t, id)
		if !res.Success {
			failures++
		}
		results = append(results, res)
	}

	slog.Info("batch generation finished",
		"template", t.ID,
		"version", t.Version,
		"requested", len(studentIDs),
		"failed", failures,
		"duration", time.Since(start).String(),
	)
	return results
}

// runOne renders a single student, converting any failure — including a
// panic inside a decoder — into that student's report entry.
func (p *Pipeline) runOne(ctx context.Context, t *models.Template, id uuid.UUID) (res Result) {
	res = Result{StudentID: id}

	defer func() {
		if rec := recover(); rec != nil {
			res.Success = false
			res.Error = fmt.Sprintf("render panicked: %v", rec)
			slog.Error("batch entry panicked", "template", t.ID, "student", id, "panic", rec)
		}
	}()

	st, err := p.students.FindByID(id)
	if err != nil {
		res.Error = fmt.Sprintf("load student: %v", err)
		return res
	}
	if st == nil {
		res.Error = "student not found"
		return res
	}

	card, err := p.gen.Generate(ctx, t, st)
	if err != nil {
		res.Error = err.Error()
		slog.Warn("batch entry failed", "template", t.ID, "student", id, "error", err)
		return res
	}

	res.Success = true
	res.FrontKey = card.FrontKey
	if card.BackKey != nil {
		res.BackKey = *card.BackKey
	}
	return res
}
