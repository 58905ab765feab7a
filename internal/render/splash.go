// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const lineHeight = 13

// Splash shows up to four centred-ish text lines on panel. It is drawn once
// at boot, before the control loop takes over the display.
func Splash(panel Panel, width, height int, lines ...string) error {
	fb := NewFramebuffer(width, height, panel)
	fb.Clear()

	drawer := &font.Drawer{
		Dst:  fb.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}

	top := (height - lineHeight*len(lines)) / 2
	for i, line := range lines {
		w := drawer.MeasureString(line).Round()
		x := (width - w) / 2
		if x < 0 {
			x = 0
		}
		drawer.Dot = fixed.P(x, top+lineHeight*(i+1)-2)
		drawer.DrawString(line)
	}
	return fb.Flush()
}
