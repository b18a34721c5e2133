// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the server-side authoring session behind the
// interactive layout surface. A session holds exactly one authoritative
// in-memory template; every geometry mutation routes through the
// coordinate model's snap/clamp pipeline, so a dragged element and a
// programmatically placed one land on identical coordinates. The enlarged
// full-screen surface works on a snapshot: snapshot-in on open,
// replace-on-save, discard-on-close — the two surfaces never hold
// independent mutable state for longer than one reconciliation.
package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/elements"
	"cardpress/internal/geometry"
	"cardpress/internal/models"
)

// Session is one operator's editing session over one template. All
// mutation is synchronous under a single mutex: there is no suspension
// point mid-edit, so torn geometry cannot be observed.
type Session struct {
	mu          sync.Mutex
	tpl         models.Template
	baseVersion int // version loaded from the store; save does a CAS on it
	activeSide  models.Side
	enlarged    bool // an enlarged-surface snapshot is outstanding
}

// NewSession opens an editing session over a deep copy of the template.
func NewSession(t *models.Template) *Session {
	return &Session{
		tpl:         t.Clone(),
		baseVersion: t.Version,
		activeSide:  models.SideFront,
	}
}

// Template returns a deep copy of the session's current template state.
// The copy carries the version the session was loaded from, so the store's
// compare-and-swap save detects concurrent saves.
func (s *Session) Template() models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tpl.Clone()
	t.Version = s.baseVersion
	return t
}

// ActiveSide returns the side currently being edited.
func (s *Session) ActiveSide() models.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSide
}

// SwitchSide changes the active side. Uncommitted edits to the side being
// left are already applied to the in-memory template, so nothing is lost.
func (s *Session) SwitchSide(side models.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout := s.tpl.Layout.Side(side)
	if layout == nil {
		return apperr.New(apperr.KindValidation, "unknown side %q", side)
	}
	if side == models.SideBack && !layout.Defined() {
		return apperr.New(apperr.KindValidation, "template has no back side")
	}
	s.activeSide = side
	return nil
}

// structuralGuard rejects structural edits on a locked template. Callers
// hold s.mu.
func (s *Session) structuralGuard() error {
	if s.tpl.Locked {
		return apperr.New(apperr.KindConcurrentModification, "template %s is locked", s.tpl.ID)
	}
	return nil
}

// activeLayout returns the layout of the active side. Callers hold s.mu.
func (s *Session) activeLayout() *models.SideLayout {
	return s.tpl.Layout.Side(s.activeSide)
}

// canvas returns the active side's canvas size. Callers hold s.mu.
func (s *Session) canvas() geometry.Size {
	return geometry.SizeOf(s.activeLayout().Size)
}

// otherRects collects the pixel boxes of every element on the active side
// except the one being moved, for element snapping. Callers hold s.mu.
func (s *Session) otherRects(exclude uuid.UUID) []geometry.Rect {
	layout := s.activeLayout()
	canvas := s.canvas()
	var out []geometry.Rect
	for i := range layout.Elements {
		if layout.Elements[i].ID == exclude {
			continue
		}
		out = append(out, geometry.ToPixel(layout.Elements[i].Position, canvas))
	}
	return out
}

// find locates an element on the active side. Callers hold s.mu.
func (s *Session) find(id uuid.UUID) (*models.Element, error) {
	layout := s.activeLayout()
	for i := range layout.Elements {
		if layout.Elements[i].ID == id {
			return &layout.Elements[i], nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "element %s not on %s side", id, s.activeSide)
}

// commit stores a snapped+clamped pixel rect back onto an element in both
// percent (authoritative) and pixel (cache) form. Callers hold s.mu.
func (s *Session) commit(el *models.Element, rect geometry.Rect) {
	canvas := s.canvas()
	el.Position = geometry.ToPercent(rect, canvas)
	el.Pixels = geometry.ToPixelRect(el.Position, canvas)
}

// AddElement places a new element of the given kind at a pixel position on
// the active side, with the registry's default geometry and style. Both
// drag-from-palette and click-to-add call this.
func (s *Session) AddElement(kind models.ElementKind, atPx geometry.Rect, override bool) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.structuralGuard(); err != nil {
		return models.Element{}, err
	}

	canvas := s.canvas()
	el, err := elements.New(kind, s.activeSide, atPx, canvas)
	if err != nil {
		return models.Element{}, err
	}

	rect := geometry.ToPixel(el.Position, canvas)
	rect = geometry.Snap(rect, s.tpl.Layout.Grid, s.otherRects(el.ID), canvas, override)
	rect = geometry.ClampToCanvas(rect, canvas)
	s.commit(&el, rect)

	layout := s.activeLayout()
	layout.Elements = append(layout.Elements, el)
	return el, nil
}

// MoveElement drags an element to a new pixel origin, through snap and
// clamp.
func (s *Session) MoveElement(id uuid.UUID, toX, toY float64, override bool) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.structuralGuard(); err != nil {
		return models.Element{}, err
	}
	el, err := s.find(id)
	if err != nil {
		return models.Element{}, err
	}

	canvas := s.canvas()
	cur := geometry.ToPixel(el.Position, canvas)
	rect := geometry.Rect{X: toX, Y: toY, Width: cur.Width, Height: cur.Height}
	rect = geometry.Snap(rect, s.tpl.Layout.Grid, s.otherRects(id), canvas, override)
	rect = geometry.ClampToCanvas(rect, canvas)
	s.commit(el, rect)
	return *el, nil
}

// ResizeElement drags a resize handle to a new pixel box, through snap and
// clamp. Zero or negative extents are rejected.
func (s *Session) ResizeElement(id uuid.UUID, box geometry.Rect, override bool) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.structuralGuard(); err != nil {
		return models.Element{}, err
	}
	if box.Width <= 0 || box.Height <= 0 {
		return models.Element{}, apperr.New(apperr.KindValidation, "element size must be positive")
	}
	el, err := s.find(id)
	if err != nil {
		return models.Element{}, err
	}

	canvas := s.canvas()
	rect := geometry.Snap(box, s.tpl.Layout.Grid, s.otherRects(id), canvas, override)
	rect = geometry.ClampToCanvas(rect, canvas)
	s.commit(el, rect)
	return *el, nil
}

// RestyleElement writes a full replacement style onto an element after
// validating it against the kind's registry contract. Style edits are
// allowed on locked templates — they are not structural.
func (s *Session) RestyleElement(id uuid.UUID, style models.ElementStyle) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.find(id)
	if err != nil {
		return models.Element{}, err
	}
	if err := elements.ValidateStyle(el.Kind, style); err != nil {
		return models.Element{}, err
	}
	el.Style = style
	return *el, nil
}

// DeleteElement removes an element from the active side.
func (s *Session) DeleteElement(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.structuralGuard(); err != nil {
		return err
	}

	layout := s.activeLayout()
	for i := range layout.Elements {
		if layout.Elements[i].ID == id {
			layout.Elements = append(layout.Elements[:i], layout.Elements[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "element %s not on %s side", id, s.activeSide)
}

// DuplicateElement deep-copies an element under a fresh id, offset by one
// grid cell so the copy is visible. Elements are never shared: the copy
// owns its style.
func (s *Session) DuplicateElement(id uuid.UUID) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.structuralGuard(); err != nil {
		return models.Element{}, err
	}
	src, err := s.find(id)
	if err != nil {
		return models.Element{}, err
	}

	dup := *src
	dup.ID = uuid.New()

	canvas := s.canvas()
	rect := geometry.ToPixel(dup.Position, canvas)
	offset := s.tpl.Layout.Grid.SizePx
	if offset <= 0 {
		offset = 10
	}
	rect.X += offset
	rect.Y += offset
	rect = geometry.ClampToCanvas(rect, canvas)
	s.commit(&dup, rect)

	layout := s.activeLayout()
	layout.Elements = append(layout.Elements, dup)
	return dup, nil
}

// SetGrid updates the snapping configuration.
func (s *Session) SetGrid(grid models.GridSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tpl.Layout.Grid = grid
}

// OpenEnlarged hands out a deep snapshot of the current layout for the
// full-screen surface. The compact surface stays live; the snapshot is the
// enlarged surface's working copy until it is reconciled back.
func (s *Session) OpenEnlarged() (models.TemplateLayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enlarged {
		return models.TemplateLayout{}, apperr.New(apperr.KindConcurrentModification, "enlarged surface already open for template %s", s.tpl.ID)
	}
	s.enlarged = true
	return s.tpl.Layout.Clone(), nil
}

// CloseEnlarged reconciles the enlarged surface back into the session.
// save=true replaces the session layout wholesale with the surface's final
// state; save=false discards the surface's edits. Either way the
// reconciliation is atomic under the session lock — no partial merge can
// be observed.
func (s *Session) CloseEnlarged(final *models.TemplateLayout, save bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enlarged {
		return apperr.New(apperr.KindValidation, "no enlarged surface open for template %s", s.tpl.ID)
	}
	s.enlarged = false

	if !save {
		return nil
	}
	if s.tpl.Locked {
		return apperr.New(apperr.KindConcurrentModification, "template %s is locked", s.tpl.ID)
	}
	if final == nil {
		return apperr.New(apperr.KindValidation, "save requested without a final layout")
	}
	if err := elements.ValidateLayout(final); err != nil {
		return err
	}
	s.tpl.Layout = final.Clone()
	s.refreshPixelCache()
	return nil
}

// refreshPixelCache rederives every element's pixel box from its percent
// position. Callers hold s.mu.
func (s *Session) refreshPixelCache() {
	for _, side := range []models.Side{models.SideFront, models.SideBack} {
		layout := s.tpl.Layout.Side(side)
		canvas := geometry.SizeOf(layout.Size)
		if canvas.Width <= 0 || canvas.Height <= 0 {
			continue
		}
		for i := range layout.Elements {
			layout.Elements[i].Pixels = geometry.ToPixelRect(layout.Elements[i].Position, canvas)
		}
	}
}

const (
	// sessionTTL is how long an untouched session survives. Every editor
	// operation routes through Open or Get, so any activity resets the
	// clock; only abandoned sessions expire.
	sessionTTL = 2 * time.Hour

	sweepInterval = 10 * time.Minute
)

// Manager tracks open sessions by template id. One session per template:
// reopening returns the existing session so two browser tabs share state
// instead of silently diverging. Sessions untouched for sessionTTL are
// swept out, so abandoned editors do not accumulate for the life of the
// process.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	touched  map[uuid.UUID]time.Time
	stop     chan struct{}
}

// NewManager creates an empty session manager and starts its idle sweep.
func NewManager() *Manager {
	m := &Manager{
		sessions: make(map[uuid.UUID]*Session),
		touched:  make(map[uuid.UUID]time.Time),
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Open returns the session for a template, creating one from the given
// snapshot if none is open.
func (m *Manager) Open(t *models.Template) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.touched[t.ID] = time.Now()
	if s, ok := m.sessions[t.ID]; ok {
		return s
	}
	s := NewSession(t)
	m.sessions[t.ID] = s
	return s
}

// Get returns the open session for a template id, or nil.
func (m *Manager) Get(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if ok {
		m.touched[id] = time.Now()
	}
	return s
}

// Close discards a template's session, e.g. after a successful save.
func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.touched, id)
}

// Stop ends the idle sweep goroutine.
func (m *Manager) Stop() {
	close(m.stop)
}

func (m *Manager) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.expire(time.Now())
		}
	}
}

// expire drops sessions whose last activity precedes now by more than
// sessionTTL.
func (m *Manager) expire(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, at := range m.touched {
		if now.Sub(at) > sessionTTL {
			delete(m.sessions, id)
			delete(m.touched, id)
		}
	}
}
