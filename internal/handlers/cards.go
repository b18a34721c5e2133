// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/models"
)

// presignExpiry is how long a presigned card URL is valid.
const presignExpiry = 1 * time.Hour

// cardView is a GeneratedCard enriched with presigned download URLs.
type cardView struct {
	models.GeneratedCard
	FrontURL string `json:"front_url,omitempty"`
	BackURL  string `json:"back_url,omitempty"`
}

// CardsList returns generated card records, optionally filtered by
// student_id and template_id. Cards live in the private bucket, so each
// entry carries a short-lived presigned URL instead of a direct link.
func (a *API) CardsList(w http.ResponseWriter, r *http.Request) {
	var studentID, templateID *uuid.UUID
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid student_id: %q", raw))
			return
		}
		studentID = &id
	}
	if raw := r.URL.Query().Get("template_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid template_id: %q", raw))
			return
		}
		templateID = &id
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, apperr.New(apperr.KindValidation, "invalid limit: %q", raw))
			return
		}
		limit = n
	}

	cards, err := a.cards.List(studentID, templateID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]cardView, 0, len(cards))
	for _, card := range cards {
		view := cardView{GeneratedCard: card}
		if a.storageClient != nil {
			url, err := a.storageClient.PresignedURL(r.Context(), card.FrontKey, presignExpiry)
			if err != nil {
				slog.Warn("presign front failed", "card_id", card.ID, "error", err)
			} else {
				view.FrontURL = url
			}
			if card.BackKey != nil {
				url, err := a.storageClient.PresignedURL(r.Context(), *card.BackKey, presignExpiry)
				if err != nil {
					slog.Warn("presign back failed", "card_id", card.ID, "error", err)
				} else {
					view.BackURL = url
				}
			}
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{"cards": views})
}
