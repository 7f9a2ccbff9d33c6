// Package present is an optional live-frame viewer backed by Ebiten. It
// is kept strictly decoupled from the bus/cpu/ppu packages: it only
// knows about a FrameSource that hands back a completed ARGB8888
// framebuffer, so swapping the viewer out never touches emulation code.
package present

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	screenWidth  = 240
	screenHeight = 160
)

// FrameSource is the only dependency the viewer takes on the rest of
// the emulator: a way to pump emulated time forward and a way to read
// back the most recently completed frame.
type FrameSource interface {
	// RunFrame advances emulation until one video frame completes.
	RunFrame()
	// Framebuffer returns ScreenWidth*ScreenHeight ARGB8888 pixels,
	// row-major, for the most recently completed frame.
	Framebuffer() []uint32
}

type viewer struct {
	src FrameSource
	img *ebiten.Image
}

// Layout fixes the logical resolution to the GBA's native size; ebiten
// handles the window-size scaling from there.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func (v *viewer) Update() error {
	v.src.RunFrame()
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	fb := v.src.Framebuffer()
	for y := 0; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			argb := fb[y*screenWidth+x]
			screen.Set(x, y, argbToColor(argb))
		}
	}
}

func argbToColor(argb uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}

// Run opens a window titled title and drives src at the display's
// refresh rate until the window is closed.
func Run(title string, src FrameSource) error {
	ebiten.SetWindowSize(screenWidth*3, screenHeight*3)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(&viewer{src: src})
}

// SnapshotPNGBounds reports the image.Rectangle a headless frame dump
// should use, for callers that write a single frame to disk instead of
// opening a window.
func SnapshotPNGBounds() image.Rectangle {
	return image.Rect(0, 0, screenWidth, screenHeight)
}
