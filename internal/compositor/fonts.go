// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package compositor

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Embedded Go fonts keep text rendering deterministic across hosts: no
// font files to install, no fontconfig lookups.
var (
	fontsOnce sync.Once
	fontSans  *opentype.Font
	fontBold  *opentype.Font
	fontsErr  error
)

func loadFonts() {
	fontsOnce.Do(func() {
		fontSans, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse goregular: %w", fontsErr)
			return
		}
		fontBold, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse gobold: %w", fontsErr)
		}
	})
}

// fontFace returns a sized face for the element's font family. Unknown
// families fall back to the regular sans face.
func fontFace(family string, size float64) (font.Face, error) {
	loadFonts()
	if fontsErr != nil {
		return nil, fontsErr
	}

	fnt := fontSans
	if family == "sans-bold" || family == "bold" {
		fnt = fontBold
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face %q at %v: %w", family, size, err)
	}
	return face, nil
}
