// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the stores, the
// compositor, and the HTTP layer. Errors carry a Kind that handlers map
// to status codes; wrapping with fmt.Errorf("%w") preserves the kind for
// errors.As further up the stack.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	// KindValidation covers bad template names, unknown element kinds,
	// unrecognized bound fields — rejected before persistence.
	KindValidation Kind = "validation"

	// KindResourceTooLarge covers oversized background/asset images.
	// They are rejected, never auto-resized.
	KindResourceTooLarge Kind = "resource_too_large"

	// KindNotFound covers missing templates, students, and assets.
	KindNotFound Kind = "not_found"

	// KindRenderFailure covers decode/encode failures while rendering a
	// single card. Recorded per batch entry, never propagated.
	KindRenderFailure Kind = "render_failure"

	// KindConcurrentModification covers locked templates and stale-version
	// saves. The editor is expected to reload rather than overwrite.
	KindConcurrentModification Kind = "concurrent_modification"
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" if err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is classified with the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
