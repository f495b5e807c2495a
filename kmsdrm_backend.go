package monodraw

import (
	"fmt"
	"os"
	"syscall"

	drm "github.com/rmcsoft/godrm"
	"github.com/rmcsoft/godrm/mode"
	log "github.com/sirupsen/logrus"
)

type drmFramebuffer struct {
	handle uint32
	id     uint32
	pitch  int
	buf    []byte
}

// KMSDRMBackend scans the 1bpp frame out of a DRM dumb buffer on
// /dev/dri/cardN, for boards that drive a panel through KMS instead of a
// dedicated display controller. Each present expands the frame into the
// back XRGB8888 buffer and flips. Synchronous: the flip is requested
// before Present returns.
type KMSDRMBackend struct {
	cardNum int

	cfg     DisplayConfig
	card    *os.File
	modeset mode.Modeset

	framebuffers []*drmFramebuffer
	front        int
}

// NewKMSDRMBackend creates a backend for DRM card cardNum.
func NewKMSDRMBackend(cardNum int) *KMSDRMBackend {
	return &KMSDRMBackend{cardNum: cardNum}
}

// Init opens the card, picks the first simple modeset and creates two
// dumb framebuffers. The 1bpp frame is drawn 1:1 into the top-left
// corner of the mode; it must fit.
func (b *KMSDRMBackend) Init(cfg DisplayConfig) error {
	if b.card != nil {
		return ErrBadState
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidArgument
	}

	card, err := drm.OpenCard(b.cardNum)
	if err != nil {
		return err
	}

	if !drm.HasDumbBuffer(card) {
		card.Close()
		return fmt.Errorf("drm device %v does not support dumb buffers", b.cardNum)
	}

	simpleMSet, err := mode.NewSimpleModeset(card)
	if err != nil {
		card.Close()
		return err
	}
	if len(simpleMSet.Modesets) == 0 {
		card.Close()
		return fmt.Errorf("drm device %v has no modesets", b.cardNum)
	}

	b.card = card
	b.cfg = cfg
	b.modeset = simpleMSet.Modesets[0]
	if cfg.Width > int(b.modeset.Width) || cfg.Height > int(b.modeset.Height) {
		b.teardown()
		return fmt.Errorf("%w: display %dx%d exceeds mode %dx%d", ErrSize,
			cfg.Width, cfg.Height, b.modeset.Width, b.modeset.Height)
	}

	for i := 0; i < 2; i++ {
		framebuffer, err := b.createFramebuffer()
		if err != nil {
			b.teardown()
			return err
		}
		b.framebuffers = append(b.framebuffers, framebuffer)
	}
	b.front = 0

	log.WithFields(log.Fields{
		"card":   b.cardNum,
		"mode":   fmt.Sprintf("%dx%d", b.modeset.Width, b.modeset.Height),
		"width":  cfg.Width,
		"height": cfg.Height,
	}).Debug("KMSDRMBackend: modeset selected")
	return nil
}

// Caps reports partial update and power save; the panel's contrast is
// not reachable through KMS.
func (b *KMSDRMBackend) Caps() BackendCaps {
	return BackendCaps{
		PartialUpdate: true,
		PowerSave:     true,
	}
}

// Present expands the frame into the back dumb buffer and flips to it.
// The whole frame is expanded regardless of the region: FrameView.Bits
// always covers the full frame, and the back buffer is two presents
// stale.
func (b *KMSDRMBackend) Present(frame FrameView, mode PresentMode) error {
	if b.card == nil {
		return ErrNotInitialized
	}
	if err := checkFrameGeometry(frame, b.cfg); err != nil {
		return err
	}

	back := b.framebuffers[b.front^1]
	for y := 0; y < frame.Height; y++ {
		row := frame.Bits[y*frame.Stride:]
		out := back.buf[y*back.pitch:]
		for x := 0; x < frame.Width; x++ {
			var v byte
			if row[x/8]&(0x80>>(x&7)) != 0 {
				v = 0xFF
			}
			out[x*4+0] = v
			out[x*4+1] = v
			out[x*4+2] = v
			out[x*4+3] = 0
		}
	}

	if err := b.setCrtc(back); err != nil {
		return err
	}
	b.front ^= 1
	return nil
}

// SetPowerSave blanks the panel by flipping to a cleared buffer; the
// next present restores the frame.
func (b *KMSDRMBackend) SetPowerSave(enable bool) error {
	if b.card == nil {
		return ErrNotInitialized
	}
	if !enable {
		return nil
	}

	back := b.framebuffers[b.front^1]
	for i := range back.buf {
		back.buf[i] = 0
	}
	if err := b.setCrtc(back); err != nil {
		return err
	}
	b.front ^= 1
	log.Debug("KMSDRMBackend: blanked")
	return nil
}

// SetContrast is not supported by the KMS path.
func (b *KMSDRMBackend) SetContrast(value byte) error {
	return ErrNotSupported
}

// Close releases the framebuffers and the card. The backend cannot be
// reinitialized afterwards.
func (b *KMSDRMBackend) Close() error {
	b.teardown()
	return nil
}

func (b *KMSDRMBackend) setCrtc(fb *drmFramebuffer) error {
	return mode.SetCrtc(b.card, b.modeset.Crtc, fb.id,
		0, 0, &b.modeset.Conn, 1, &b.modeset.Mode)
}

func (b *KMSDRMBackend) createFramebuffer() (*drmFramebuffer, error) {
	fb := &drmFramebuffer{}
	var err error

	defer func() {
		if err != nil {
			b.destroyFramebuffer(fb)
		}
	}()

	width := b.modeset.Width
	height := b.modeset.Height
	const bpp = 32
	const depth = 24

	fbInfo, err := mode.CreateFB(b.card, uint16(width), uint16(height), bpp)
	if err != nil {
		return nil, err
	}

	fb.handle = fbInfo.Handle
	fb.pitch = int(fbInfo.Pitch)
	fb.id, err = mode.AddFB(b.card, uint16(width), uint16(height),
		depth, bpp, fbInfo.Pitch, fb.handle)
	if err != nil {
		return nil, err
	}

	offset, err := mode.MapDumb(b.card, fb.handle)
	if err != nil {
		return nil, err
	}

	fb.buf, err = syscall.Mmap(int(b.card.Fd()), int64(offset), int(fbInfo.Size),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	return fb, nil
}

func (b *KMSDRMBackend) destroyFramebuffer(fb *drmFramebuffer) {
	if fb == nil || b.card == nil {
		return
	}

	if fb.id != 0 {
		mode.RmFB(b.card, fb.id)
		fb.id = 0
	}

	if fb.handle != 0 {
		mode.DestroyDumb(b.card, fb.handle)
		fb.handle = 0
	}

	if fb.buf != nil {
		syscall.Munmap(fb.buf)
		fb.buf = nil
	}
}

func (b *KMSDRMBackend) teardown() {
	for _, fb := range b.framebuffers {
		b.destroyFramebuffer(fb)
	}
	b.framebuffers = nil
	if b.card != nil {
		b.card.Close()
		b.card = nil
	}
}
