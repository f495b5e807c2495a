package monodraw

import "image"

// Rotation is the display orientation in 90 degree steps.
type Rotation uint8

const (
	// Rotate0 is the native orientation.
	Rotate0 Rotation = iota
	// Rotate90 rotates the scan-out 90 degrees clockwise.
	Rotate90
	// Rotate180 rotates the scan-out 180 degrees.
	Rotate180
	// Rotate270 rotates the scan-out 270 degrees clockwise.
	Rotate270
)

// BufferMode selects how the display memory is addressed.
type BufferMode uint8

const (
	// BufferFull addresses the display as one contiguous frame.
	BufferFull BufferMode = iota
	// BufferPage addresses the display in horizontal pages of PageRows
	// rows each (SSD1306-style page addressing).
	BufferPage
)

// PresentMode selects how much of the frame a present transfers.
type PresentMode uint8

const (
	// PresentAuto lets the presenter pick between full and dirty.
	PresentAuto PresentMode = iota
	// PresentFull transfers the entire frame.
	PresentFull
	// PresentDirty transfers only the dirty region.
	PresentDirty
)

// DisplayConfig describes the display a Presenter drives.
type DisplayConfig struct {
	Width    int
	Height   int
	Rotation Rotation
	// BufferMode selects full-frame or paged addressing.
	BufferMode BufferMode
	// PageRows is the rows per page; meaningful only in BufferPage mode,
	// where it must be positive.
	PageRows int
	// DirtyTracking enables partial presents driven by the surface's
	// dirty rectangle.
	DirtyTracking bool
}

// BackendCaps are the optional capabilities of a backend. They are
// queried once right after Init and treated as immutable for the
// backend's lifetime; they gate which presenter operations are legal.
type BackendCaps struct {
	PartialUpdate bool
	PowerSave     bool
	Contrast      bool
	// AsyncPresent means Present returns promptly and true completion is
	// signalled later, out of band, through Presenter.OnTransferDone.
	AsyncPresent bool
}

// FrameView is a borrowed description of one framebuffer handed to a
// backend Present call. Bits covers the whole frame (1bpp, row-major,
// MSB first, Stride bytes per row); Region is the part that changed.
// The view never owns the memory and must not outlive the call for
// synchronous backends, or the transfer for asynchronous ones.
type FrameView struct {
	Bits   []byte
	Width  int
	Height int
	Stride int
	Region image.Rectangle
}

// Backend is the narrow device contract the presenter drives. One
// implementation per physical display or test harness.
//
// Unsupported optional operations return ErrNotSupported.
type Backend interface {
	// Init prepares the device for the given display. Called exactly
	// once per presenter construction.
	Init(config DisplayConfig) error

	// Caps reports the backend capabilities. Stable after Init.
	Caps() BackendCaps

	// Present transfers the frame region to the device. Asynchronous
	// backends must return promptly and signal true completion out of
	// band.
	Present(frame FrameView, mode PresentMode) error

	// SetPowerSave enters or leaves the display's low-power state.
	SetPowerSave(enable bool) error

	// SetContrast adjusts the display contrast or brightness.
	SetContrast(value byte) error
}

// checkFrameGeometry validates a FrameView against the configured
// display. Shared by the concrete backends.
func checkFrameGeometry(frame FrameView, cfg DisplayConfig) error {
	if frame.Bits == nil || frame.Width <= 0 || frame.Height <= 0 {
		return ErrInvalidArgument
	}
	if frame.Width != cfg.Width || frame.Height != cfg.Height {
		return ErrSize
	}
	if frame.Stride < packedStride(frame.Width) {
		return ErrSize
	}
	return nil
}
