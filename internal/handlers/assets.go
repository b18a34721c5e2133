// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"cardpress/internal/apperr"
)

const (
	// maxUploadSize is the maximum allowed file upload size (50 MB).
	maxUploadSize = 50 << 20

	// maxBackgroundPx caps background dimensions. Card canvases derive
	// their size from the background image, so this bound also caps the
	// render surface.
	maxBackgroundPx = 2000

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// allowedAssetTypes defines MIME types accepted for upload. Assets are
// decoded during composition, so only raster formats the renderer can
// read are allowed.
var allowedAssetTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// assetRoles names what an uploaded file will be used as. Backgrounds
// carry the extra dimension cap.
var assetRoles = map[string]string{
	"background": "backgrounds",
	"image":      "images",
	"photo":      "photos",
}

type assetResponse struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AssetUpload handles multipart image upload to the assets bucket. The
// file is sniffed and fully decoded before storage: a file that is not a
// real image never reaches the bucket.
func (a *API) AssetUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		writeError(w, apperr.New(apperr.KindRenderFailure, "object storage is not configured"))
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = "image"
	}
	prefix, ok := assetRoles[role]
	if !ok {
		writeError(w, apperr.New(apperr.KindValidation, "unknown asset role %q", role))
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, apperr.New(apperr.KindResourceTooLarge, "file too large, maximum size is 50 MB"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "no file provided"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, apperr.New(apperr.KindResourceTooLarge, "file too large, maximum size is 50 MB"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	// Detect content type by sniffing, not by trusting the client header.
	contentType := http.DetectContentType(data)
	ext, ok := allowedAssetTypes[contentType]
	if !ok {
		writeError(w, apperr.New(apperr.KindValidation, "unsupported file type %q", contentType))
		return
	}

	// Probe dimensions without decoding the full image first.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "file is not a decodable image"))
		return
	}
	if cfg.Width*cfg.Height > maxImagePixels {
		writeError(w, apperr.New(apperr.KindResourceTooLarge, "image has too many pixels"))
		return
	}
	if role == "background" && (cfg.Width > maxBackgroundPx || cfg.Height > maxBackgroundPx) {
		writeError(w, apperr.New(apperr.KindResourceTooLarge,
			"background is %dx%d, maximum dimension is %d px", cfg.Width, cfg.Height, maxBackgroundPx))
		return
	}

	// Full decode confirms the file is well-formed end to end.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "image is corrupt: %v", err))
		return
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New(), ext)
	if err := a.storageClient.Assets().Upload(r.Context(), key, contentType, data); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assetResponse{
		Key:    key,
		URL:    a.storageClient.AssetURL(key),
		Width:  cfg.Width,
		Height: cfg.Height,
	})
}
