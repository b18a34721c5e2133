// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package compositor rasterizes one side of one student's card:
// LoadBackground -> DrawElementsInOrder -> Encode -> Persist. Element
// order on the template is the z-order; percent positions are resolved
// against the background's actual stored dimensions, never an editor
// preview size. Output is PNG — lossless, so QR and barcode regions
// survive without scan-breaking recompression.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"

	"cardpress/internal/apperr"
	"cardpress/internal/binding"
	"cardpress/internal/geometry"
	"cardpress/internal/models"
)

// BlobStore is the slice of object storage the compositor needs.
type BlobStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// CardRecorder persists GeneratedCard rows. Implemented by store.CardStore.
type CardRecorder interface {
	Create(card *models.GeneratedCard) (*models.GeneratedCard, error)
}

// Compositor renders templates into card rasters. Dependencies arrive
// through the constructor; the compositor holds no global state.
type Compositor struct {
	assets BlobStore
	cards  BlobStore
	rec    CardRecorder
}

// New creates a Compositor. rec may be nil for preview-only use.
func New(assets, cards BlobStore, rec CardRecorder) *Compositor {
	return &Compositor{assets: assets, cards: cards, rec: rec}
}

// RenderSide produces the raster for one side. Returns (nil, nil) when the
// side has no background image — that side simply does not exist.
func (c *Compositor) RenderSide(ctx context.Context, layout *models.SideLayout, st *models.Student) (image.Image, error) {
	if !layout.Defined() {
		return nil, nil
	}

	bg, err := c.loadBackground(ctx, layout.BackgroundKey)
	if err != nil {
		return nil, err
	}

	// Percent positions resolve against the background's real size. The
	// stored canvas size is only the upload-time record of the same, so a
	// swapped background is rendered at its own dimensions.
	canvas := geometry.Size{
		Width:  float64(bg.Bounds().Dx()),
		Height: float64(bg.Bounds().Dy()),
	}

	dc := gg.NewContextForImage(bg)

	for i := range layout.Elements {
		el := &layout.Elements[i]
		rect := geometry.ToPixel(el.Position, canvas)
		if err := c.drawElement(ctx, dc, el, rect, st); err != nil {
			return nil, fmt.Errorf("draw element %s (%s): %w", el.ID, el.Kind, err)
		}
	}

	return dc.Image(), nil
}

// loadBackground fetches and decodes a side's background at its native
// stored resolution.
func (c *Compositor) loadBackground(ctx context.Context, key string) (image.Image, error) {
	data, err := c.assets.Download(ctx, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRenderFailure, err, "load background %s", key)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRenderFailure, err, "decode background %s", key)
	}
	return img, nil
}

// drawElement dispatches on the element kind. The switch is exhaustive
// over the registry's closed set.
func (c *Compositor) drawElement(ctx context.Context, dc *gg.Context, el *models.Element, rect geometry.Rect, st *models.Student) error {
	switch el.Kind {
	case models.KindBoundText:
		return c.drawText(dc, el, rect, st)
	case models.KindPhotoSlot:
		return c.drawPhoto(ctx, dc, el, rect, st)
	case models.KindQRSlot:
		return c.drawQR(dc, el, rect, st)
	case models.KindBarcodeSlot:
		return c.drawBarcode(dc, el, rect, st)
	case models.KindCustomImage:
		return c.drawCustomImage(ctx, dc, el, rect)
	}
	return apperr.New(apperr.KindValidation, "unknown element kind %q", el.Kind)
}

// drawText renders a bound-text element. Text wider than the declared box
// is drawn past it, unwrapped and unclipped — the box only anchors
// position and alignment; overflow handling belongs to the caller.
func (c *Compositor) drawText(dc *gg.Context, el *models.Element, rect geometry.Rect, st *models.Student) error {
	text, err := binding.Text(el, st)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	face, err := fontFace(el.Style.FontFamily, el.Style.FontSize)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "font for element %s", el.ID)
	}
	dc.SetFontFace(face)

	color := el.Style.Color
	if color == "" {
		color = "#000000"
	}
	dc.SetHexColor(color)

	x, ax := rect.X, 0.0
	switch el.Style.Align {
	case models.AlignCenter:
		x, ax = rect.X+rect.Width/2, 0.5
	case models.AlignRight:
		x, ax = rect.Right(), 1.0
	}

	dc.DrawStringAnchored(text, x, rect.Y+rect.Height/2, ax, 0.5)
	return nil
}

// drawPhoto renders a photo-slot: the source photo is scaled to cover the
// slot and clipped by the declared corner radius (50% = circular). A
// student without a photo gets nothing — placeholders are an editor-only
// visual, never baked into a final card.
func (c *Compositor) drawPhoto(ctx context.Context, dc *gg.Context, el *models.Element, rect geometry.Rect, st *models.Student) error {
	key, ok := binding.Photo(st)
	if !ok {
		return nil
	}

	data, err := c.assets.Download(ctx, key)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "load photo %s", key)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "decode photo %s", key)
	}

	w, h := int(rect.Width), int(rect.Height)
	if w < 1 || h < 1 {
		return nil
	}
	filled := imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)

	radius := minf(rect.Width, rect.Height) * el.Style.CornerRadiusPct / 100
	if radius > 0 {
		dc.DrawRoundedRectangle(rect.X, rect.Y, rect.Width, rect.Height, radius)
		dc.Clip()
		dc.DrawImage(filled, int(rect.X), int(rect.Y))
		dc.ResetClip()
		return nil
	}

	dc.DrawImage(filled, int(rect.X), int(rect.Y))
	return nil
}

// drawQR generates the QR image at the slot's pixel dimensions and draws
// it verbatim — no post-generation scaling that could break scanning.
func (c *Compositor) drawQR(dc *gg.Context, el *models.Element, rect geometry.Rect, st *models.Student) error {
	payload, err := binding.QRPayload(el, st)
	if err != nil {
		return err
	}

	size := int(minf(rect.Width, rect.Height))
	if size < 21 { // below one module per row of the smallest QR version
		return apperr.New(apperr.KindValidation, "qr slot %s is too small (%dpx)", el.ID, size)
	}

	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "generate qr for element %s", el.ID)
	}

	img := q.Image(size)
	// Center the square code inside the (possibly non-square) slot.
	x := rect.X + (rect.Width-float64(size))/2
	y := rect.Y + (rect.Height-float64(size))/2
	dc.DrawImage(img, int(x), int(y))
	return nil
}

// drawBarcode generates a code128 symbol scaled to the slot's pixel box
// and draws it verbatim.
func (c *Compositor) drawBarcode(dc *gg.Context, el *models.Element, rect geometry.Rect, st *models.Student) error {
	payload, err := binding.BarcodePayload(el, st)
	if err != nil {
		return err
	}

	bc, err := code128.Encode(payload)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "encode barcode for element %s", el.ID)
	}

	w, h := int(rect.Width), int(rect.Height)
	if w < 1 || h < 1 {
		return apperr.New(apperr.KindValidation, "barcode slot %s has no area", el.ID)
	}
	scaled, err := barcode.Scale(bc, w, h)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "scale barcode for element %s", el.ID)
	}

	dc.DrawImage(scaled, int(rect.X), int(rect.Y))
	return nil
}

// drawCustomImage renders a static uploaded asset, cover-scaled to the
// slot.
func (c *Compositor) drawCustomImage(ctx context.Context, dc *gg.Context, el *models.Element, rect geometry.Rect) error {
	data, err := c.assets.Download(ctx, el.Style.AssetKey)
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "load asset %s", el.Style.AssetKey)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return apperr.Wrap(apperr.KindRenderFailure, err, "decode asset %s", el.Style.AssetKey)
	}

	w, h := int(rect.Width), int(rect.Height)
	if w < 1 || h < 1 {
		return nil
	}
	dc.DrawImage(imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos), int(rect.X), int(rect.Y))
	return nil
}

// EncodePNG flattens a rendered side to lossless PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.Wrap(apperr.KindRenderFailure, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Preview renders one side to PNG bytes without persisting anything. Used
// by the editor's live preview endpoint.
func (c *Compositor) Preview(ctx context.Context, t *models.Template, side models.Side, st *models.Student) ([]byte, error) {
	layout := t.Layout.Side(side)
	if layout == nil {
		return nil, apperr.New(apperr.KindValidation, "unknown side %q", side)
	}
	img, err := c.RenderSide(ctx, layout, st)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.New(apperr.KindNotFound, "template %s has no %s side", t.ID, side)
	}
	return EncodePNG(img)
}

// Generate renders every defined side of the template for one student,
// persists the rasters to card storage, and records a GeneratedCard row
// pinned to the exact template version used. Any failure leaves sibling
// renders in a batch untouched: the error is reported for this student
// only.
func (c *Compositor) Generate(ctx context.Context, t *models.Template, st *models.Student) (*models.GeneratedCard, error) {
	start := time.Now()

	front, err := c.RenderSide(ctx, &t.Layout.Front, st)
	if err != nil {
		return nil, fmt.Errorf("front side: %w", err)
	}
	if front == nil {
		return nil, apperr.New(apperr.KindValidation, "template %s has no front background", t.ID)
	}

	frontPNG, err := EncodePNG(front)
	if err != nil {
		return nil, fmt.Errorf("front side: %w", err)
	}

	var backPNG []byte
	if back, err := c.RenderSide(ctx, &t.Layout.Back, st); err != nil {
		return nil, fmt.Errorf("back side: %w", err)
	} else if back != nil {
		if backPNG, err = EncodePNG(back); err != nil {
			return nil, fmt.Errorf("back side: %w", err)
		}
	}

	frontKey := cardKey(t, st, models.SideFront)
	if err := c.cards.Upload(ctx, frontKey, "image/png", frontPNG); err != nil {
		return nil, apperr.Wrap(apperr.KindRenderFailure, err, "persist front raster")
	}

	card := &models.GeneratedCard{
		StudentID:       st.ID,
		TemplateID:      t.ID,
		TemplateVersion: t.Version,
		FrontKey:        frontKey,
	}
	if backPNG != nil {
		backKey := cardKey(t, st, models.SideBack)
		if err := c.cards.Upload(ctx, backKey, "image/png", backPNG); err != nil {
			return nil, apperr.Wrap(apperr.KindRenderFailure, err, "persist back raster")
		}
		card.BackKey = &backKey
	}

	if c.rec != nil {
		card, err = c.rec.Create(card)
		if err != nil {
			return nil, fmt.Errorf("record generated card: %w", err)
		}
	}

	slog.Debug("card generated",
		"template", t.ID,
		"version", t.Version,
		"student", st.ID,
		"back", card.HasBack(),
		"duration", time.Since(start).String(),
	)
	return card, nil
}

// cardKey builds the storage key for one rendered side. A re-generation at
// the same version overwrites the blob but still records a fresh row.
func cardKey(t *models.Template, st *models.Student, side models.Side) string {
	return fmt.Sprintf("cards/%s/v%d/%s/%s.png", t.ID, t.Version, st.ID, side)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
