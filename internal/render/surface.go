// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render composes complete monochrome frames (border plus cursor)
// and hands them to the display panel.
package render

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Surface is the drawing contract of the display driver. Coordinates are
// pixels; x grows to the right, y grows downwards.
type Surface interface {
	Clear()
	Rect(x, y, w, h int)     // 1-pixel outline
	FillRect(x, y, w, h int) // solid rectangle
	Flush() error
}

// Panel is the bus side of a display: it accepts a whole frame.
// ssd1306.Dev satisfies it.
type Panel interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

var (
	on  = &image.Uniform{C: image1bit.On}
	off = &image.Uniform{C: image1bit.Off}
)

// Framebuffer is a Surface backed by an SSD1306-layout 1-bit image.
type Framebuffer struct {
	img   *image1bit.VerticalLSB
	panel Panel
}

// NewFramebuffer allocates a width x height frame flushed to panel.
func NewFramebuffer(width, height int, panel Panel) *Framebuffer {
	return &Framebuffer{
		img:   image1bit.NewVerticalLSB(image.Rect(0, 0, width, height)),
		panel: panel,
	}
}

// Image exposes the frame being composed.
func (f *Framebuffer) Image() *image1bit.VerticalLSB { return f.img }

func (f *Framebuffer) Clear() {
	draw.Draw(f.img, f.img.Bounds(), off, image.Point{}, draw.Src)
}

func (f *Framebuffer) Rect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	f.fill(image.Rect(x, y, x+w, y+1))     // top
	f.fill(image.Rect(x, y+h-1, x+w, y+h)) // bottom
	f.fill(image.Rect(x, y, x+1, y+h))     // left
	f.fill(image.Rect(x+w-1, y, x+w, y+h)) // right
}

func (f *Framebuffer) FillRect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	f.fill(image.Rect(x, y, x+w, y+h))
}

func (f *Framebuffer) fill(r image.Rectangle) {
	draw.Draw(f.img, r, on, image.Point{}, draw.Src)
}

// Flush transfers the whole frame to the panel.
func (f *Framebuffer) Flush() error {
	if f.panel == nil {
		return nil
	}
	if err := f.panel.Draw(f.img.Bounds(), f.img, image.Point{}); err != nil {
		return fmt.Errorf("render: flush: %w", err)
	}
	return nil
}

// Lit reports whether the pixel at (x, y) of img is on.
func Lit(img image.Image, x, y int) bool {
	return image1bit.BitModel.Convert(img.At(x, y)).(image1bit.Bit) == image1bit.On
}

// ASCII dumps img as rows of '#' (on) and '.' (off).
func ASCII(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	sb.Grow((b.Dx() + 1) * b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if Lit(img, x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
