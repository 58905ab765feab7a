// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
)

// Compositor redraws the full frame every tick; there is no diffing.
type Compositor struct {
	width, height int
	cursor        int
}

// NewCompositor returns a compositor for the given display bounds.
func NewCompositor(b mapping.Bounds) *Compositor {
	return &Compositor{width: b.Width, height: b.Height, cursor: b.Cursor}
}

// Compose clears s, draws the border selected by style and the cursor
// square at p, then flushes.
func (c *Compositor) Compose(s Surface, style input.BorderStyle, p mapping.Placement) error {
	s.Clear()

	switch style {
	case input.BorderSingle:
		s.Rect(0, 0, c.width, c.height)
	case input.BorderTriple:
		for inset := 0; inset < 3; inset++ {
			s.Rect(inset, inset, c.width-2*inset, c.height-2*inset)
		}
	}

	// Top is the row and Left the column of the cursor's corner.
	s.FillRect(p.Left, p.Top, c.cursor, c.cursor)
	return s.Flush()
}
