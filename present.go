package monodraw

import (
	"fmt"
	"image"
	"sync/atomic"
)

// Presenter owns two fixed-size 1bpp framebuffers and drives a backend
// with them. Drawing goes through the bound Surface into the active
// buffer; PresentFrame resolves how much of the frame to transfer and
// submits it. With an asynchronous backend the presenter swaps the draw
// buffer on submit so drawing can continue while the old buffer is still
// transferring, and the host closes the transfer by calling
// OnTransferDone from its completion signal.
//
// All drawing and submission calls belong to one cooperative context.
// Exactly one other context (an interrupt or DMA callback) may call
// OnTransferDone concurrently; the in-flight flag is the only state
// shared between the two and is synchronized without locks. Every call
// returns synchronously.
type Presenter struct {
	cfg     DisplayConfig
	caps    BackendCaps
	backend Backend

	buffers   [2][]byte
	surface   Surface
	drawIndex int

	inFlight    atomic.Bool
	initialized bool
	inFrame     bool
}

// NewPresenter validates the configuration, initializes the backend and
// returns a presenter with both framebuffers allocated and zeroed. The
// whole frame starts dirty, so the first present is always a full flush.
//
// Construction failure is permanent: the error is returned here and no
// usable presenter exists.
func NewPresenter(backend Backend, cfg DisplayConfig) (*Presenter, error) {
	required, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	p := &Presenter{cfg: cfg, backend: backend}
	p.buffers[0] = make([]byte, required)
	p.buffers[1] = make([]byte, required)
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPresenterWithStorage is NewPresenter backed by caller-provided
// memory instead of heap allocations, for hosts that keep framebuffers
// in static storage. storage must hold both framebuffers; ErrSize is
// returned when it cannot.
func NewPresenterWithStorage(backend Backend, cfg DisplayConfig, storage []byte) (*Presenter, error) {
	required, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}
	if len(storage) < 2*required {
		return nil, fmt.Errorf("%w: framebuffers need %d bytes, storage holds %d",
			ErrSize, 2*required, len(storage))
	}

	p := &Presenter{cfg: cfg, backend: backend}
	p.buffers[0] = storage[:required:required]
	p.buffers[1] = storage[required : 2*required : 2*required]
	return p, p.init()
}

func validateConfig(cfg DisplayConfig) (int, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("%w: display size %dx%d", ErrInvalidArgument, cfg.Width, cfg.Height)
	}
	if cfg.BufferMode == BufferPage && cfg.PageRows <= 0 {
		return 0, fmt.Errorf("%w: page mode needs positive page rows", ErrInvalidArgument)
	}
	return packedStride(cfg.Width) * cfg.Height, nil
}

func (p *Presenter) init() error {
	if err := p.backend.Init(p.cfg); err != nil {
		return err
	}
	p.caps = p.backend.Caps()

	p.drawIndex = 0
	p.inFlight.Store(false)
	p.bindDrawSurface()
	for i := range p.buffers {
		buf := p.buffers[i]
		for j := range buf {
			buf[j] = 0
		}
	}
	p.surface.ClearDirtyRect()
	p.surface.AddDirtyRect(p.fullRect())
	p.initialized = true
	p.inFrame = false
	return nil
}

// Surface returns the rasterizer view bound to the active draw buffer.
// The view is owned by the presenter and stays valid for its lifetime.
func (p *Presenter) Surface() *Surface { return &p.surface }

// Backend returns the driven backend.
func (p *Presenter) Backend() Backend { return p.backend }

// Config returns the active display configuration.
func (p *Presenter) Config() DisplayConfig { return p.cfg }

// Caps returns the capabilities cached at construction.
func (p *Presenter) Caps() BackendCaps { return p.caps }

// TransferInProgress reports whether an asynchronous submission is
// outstanding.
func (p *Presenter) TransferInProgress() bool {
	return p.inFlight.Load()
}

// OnTransferDone closes the lifecycle of an asynchronous submission. The
// host must call it from its hardware completion signal (DMA/SPI
// transfer-complete interrupt); it is the only way an in-flight transfer
// ends. Safe to call concurrently with the drawing context.
func (p *Presenter) OnTransferDone() error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if !p.caps.AsyncPresent {
		return ErrNotSupported
	}
	if !p.inFlight.CompareAndSwap(true, false) {
		return ErrBadState
	}
	return nil
}

// BeginFrame opens a frame. It is an advisory reentrancy guard only:
// ErrBusy when a frame is already open, but exclusive access to the
// Surface remains the caller's discipline.
func (p *Presenter) BeginFrame() error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if p.inFrame {
		return ErrBusy
	}
	p.inFrame = true
	return nil
}

// EndFrame closes the frame opened by BeginFrame.
func (p *Presenter) EndFrame() error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if !p.inFrame {
		return ErrInvalidArgument
	}
	p.inFrame = false
	return nil
}

// PresentFrame submits the current frame. The region and final mode are
// resolved in order: a backend without partial update forces PresentFull
// for the Auto and Dirty modes; PresentFull (or Auto with dirty tracking
// disabled) transfers the whole frame; otherwise the dirty rectangle is
// clipped to the frame and transferred, and an empty dirty rectangle
// succeeds without submitting anything.
func (p *Presenter) PresentFrame(mode PresentMode) error {
	if !p.initialized {
		return ErrNotInitialized
	}

	resolved := mode
	if !p.caps.PartialUpdate && (resolved == PresentAuto || resolved == PresentDirty) {
		resolved = PresentFull
	}

	var region image.Rectangle
	if resolved == PresentFull || (resolved == PresentAuto && !p.cfg.DirtyTracking) {
		resolved = PresentFull
		region = p.fullRect()
	} else {
		region = IntersectRect(p.surface.DirtyRect(), p.fullRect())
		if region.Empty() {
			return nil
		}
		resolved = PresentDirty
	}

	return p.submit(region, resolved)
}

// PresentRegion submits an explicit region regardless of the tracked
// dirty state. The region is clipped to the frame; an empty result is
// ErrInvalidArgument. A backend without partial update silently upgrades
// the submission to a full frame instead of failing.
func (p *Presenter) PresentRegion(region image.Rectangle) error {
	if !p.initialized {
		return ErrNotInitialized
	}

	clipped := IntersectRect(region, p.fullRect())
	if clipped.Empty() {
		return ErrInvalidArgument
	}

	mode := PresentDirty
	if !p.caps.PartialUpdate {
		mode = PresentFull
		clipped = p.fullRect()
	}
	return p.submit(clipped, mode)
}

// SetRotation updates the configured rotation and marks the whole frame
// dirty; a rotation change invalidates partial-update assumptions.
func (p *Presenter) SetRotation(rotation Rotation) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	p.cfg.Rotation = rotation
	p.surface.AddDirtyRect(p.fullRect())
	return nil
}

// SetPowerSave forwards to the backend when it has the capability.
func (p *Presenter) SetPowerSave(enable bool) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if !p.caps.PowerSave {
		return ErrNotSupported
	}
	return p.backend.SetPowerSave(enable)
}

// SetContrast forwards to the backend when it has the capability.
func (p *Presenter) SetContrast(value byte) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if !p.caps.Contrast {
		return ErrNotSupported
	}
	return p.backend.SetContrast(value)
}

func (p *Presenter) fullRect() image.Rectangle {
	return boundsRect(p.cfg.Width, p.cfg.Height)
}

func (p *Presenter) strideBytes() int {
	return packedStride(p.cfg.Width)
}

func (p *Presenter) bindDrawSurface() {
	p.surface.Bind(p.buffers[p.drawIndex], p.cfg.Width, p.cfg.Height, p.strideBytes())
}

// copyRegion copies the bytes backing region from one framebuffer to the
// other. Only whole bytes overlapping the region's columns move; the
// rest of the frame is untouched.
func (p *Presenter) copyRegion(src, dst int, region image.Rectangle) {
	clipped := IntersectRect(region, p.fullRect())
	if clipped.Empty() {
		return
	}

	stride := p.strideBytes()
	byteStart := clipped.Min.X / 8
	byteEnd := (clipped.Max.X + 7) / 8
	if byteEnd <= byteStart {
		return
	}

	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		offset := y*stride + byteStart
		copy(p.buffers[dst][offset:y*stride+byteEnd], p.buffers[src][offset:])
	}
}

// swapDrawBuffer makes the other framebuffer the draw target. The just
// submitted region is copied over first so drawing that starts
// immediately afterward is consistent with the visible state outside the
// still-transferring rows.
func (p *Presenter) swapDrawBuffer(submitted image.Rectangle) {
	src := p.drawIndex
	dst := src ^ 1
	p.copyRegion(src, dst, submitted)
	p.drawIndex = dst
	p.bindDrawSurface()
	p.surface.ClearDirtyRect()
}

// submit hands the active buffer to the backend. Synchronous backends
// complete in the call; a failure propagates verbatim and keeps the
// dirty rectangle so an identical retry is possible. Asynchronous
// backends are single-flight: a submission while one is outstanding is
// rejected with ErrBusy, never queued.
func (p *Presenter) submit(region image.Rectangle, mode PresentMode) error {
	frame := FrameView{
		Bits:   p.buffers[p.drawIndex],
		Width:  p.cfg.Width,
		Height: p.cfg.Height,
		Stride: p.strideBytes(),
		Region: region,
	}

	if !p.caps.AsyncPresent {
		err := p.backend.Present(frame, mode)
		if err == nil {
			p.surface.ClearDirtyRect()
		}
		return err
	}

	if p.inFlight.Load() {
		return ErrBusy
	}
	if err := p.backend.Present(frame, mode); err != nil {
		return err
	}
	p.inFlight.Store(true)
	p.swapDrawBuffer(region)
	return nil
}
