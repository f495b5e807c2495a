//go:build cgo

package monodraw

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

var mutexSdlInit = sync.Mutex{}
var sdlInited = false

func initSdl() {
	mutexSdlInit.Lock()
	defer mutexSdlInit.Unlock()

	if !sdlInited {
		sdl.Init(sdl.INIT_VIDEO)
		sdlInited = true
	}
}

// SDLBackend shows the 1bpp frame in a scaled desktop window, standing
// in for a physical display during development. Synchronous: Present
// returns after the window has been updated.
type SDLBackend struct {
	title string
	scale int

	cfg      DisplayConfig
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	contrast byte
}

// NewSDLBackend creates a desktop mock backend. Each display pixel is
// drawn as a scale x scale block.
func NewSDLBackend(title string, scale int) *SDLBackend {
	if scale <= 0 {
		scale = 1
	}
	return &SDLBackend{
		title:    title,
		scale:    scale,
		contrast: 0xFF,
	}
}

// Init opens the window and the streaming texture.
func (b *SDLBackend) Init(cfg DisplayConfig) error {
	if b.window != nil {
		return ErrBadState
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidArgument
	}

	initSdl()

	window, renderer, err := sdl.CreateWindowAndRenderer(
		int32(cfg.Width*b.scale), int32(cfg.Height*b.scale), 0)
	if err != nil {
		return err
	}
	window.SetTitle(b.title)

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING, int32(cfg.Width), int32(cfg.Height))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return err
	}

	b.cfg = cfg
	b.window = window
	b.renderer = renderer
	b.texture = texture
	log.WithFields(log.Fields{
		"width":  cfg.Width,
		"height": cfg.Height,
		"scale":  b.scale,
	}).Debug("SDLBackend: window created")
	return nil
}

// Caps reports the mock's capabilities: partial update, power save and
// contrast, no asynchronous presenting.
func (b *SDLBackend) Caps() BackendCaps {
	return BackendCaps{
		PartialUpdate: true,
		PowerSave:     true,
		Contrast:      true,
	}
}

// Present expands the frame region into the texture and refreshes the
// window.
func (b *SDLBackend) Present(frame FrameView, mode PresentMode) error {
	if b.window == nil {
		return ErrNotInitialized
	}
	if err := checkFrameGeometry(frame, b.cfg); err != nil {
		return err
	}

	region := IntersectRect(frame.Region, boundsRect(frame.Width, frame.Height))
	if region.Empty() {
		return ErrInvalidArgument
	}

	lockRect := sdl.Rect{
		X: int32(region.Min.X),
		Y: int32(region.Min.Y),
		W: int32(region.Dx()),
		H: int32(region.Dy()),
	}
	pixels, pitch, err := b.texture.Lock(&lockRect)
	if err != nil {
		return err
	}

	on := b.contrast
	for y := 0; y < region.Dy(); y++ {
		row := frame.Bits[(region.Min.Y+y)*frame.Stride:]
		out := pixels[y*pitch:]
		for x := 0; x < region.Dx(); x++ {
			fx := region.Min.X + x
			var v byte
			if row[fx/8]&(0x80>>(fx&7)) != 0 {
				v = on
			}
			out[x*4+0] = v    // B
			out[x*4+1] = v    // G
			out[x*4+2] = v    // R
			out[x*4+3] = 0xFF // A
		}
	}
	b.texture.Unlock()

	if err := b.renderer.Copy(b.texture, nil, nil); err != nil {
		return err
	}
	b.renderer.Present()
	return nil
}

// SetPowerSave hides the window instead of blanking a panel.
func (b *SDLBackend) SetPowerSave(enable bool) error {
	if b.window == nil {
		return ErrNotInitialized
	}
	if enable {
		b.window.Hide()
	} else {
		b.window.Show()
	}
	log.WithField("enable", enable).Debug("SDLBackend: power save")
	return nil
}

// SetContrast scales the intensity used for set pixels on the next
// present.
func (b *SDLBackend) SetContrast(value byte) error {
	if b.window == nil {
		return ErrNotInitialized
	}
	b.contrast = value
	return nil
}

// Close destroys the window and renderer. The backend cannot be
// reinitialized afterwards.
func (b *SDLBackend) Close() error {
	if b.texture != nil {
		b.texture.Destroy()
		b.texture = nil
	}
	if b.renderer != nil {
		b.renderer.Destroy()
		b.renderer = nil
	}
	if b.window != nil {
		b.window.Destroy()
		b.window = nil
	}
	return nil
}
