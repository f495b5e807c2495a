package monodraw

type nullBackend struct {
	caps   BackendCaps
	cfg    DisplayConfig
	inited bool
}

// NewNullBackend returns a backend that accepts and discards every
// frame while honoring the capability contract for caps. With
// AsyncPresent set it never signals completion itself; the host (or a
// test) closes each transfer through Presenter.OnTransferDone.
func NewNullBackend(caps BackendCaps) Backend {
	return &nullBackend{caps: caps}
}

func (b *nullBackend) Init(cfg DisplayConfig) error {
	if b.inited {
		return ErrBadState
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidArgument
	}
	b.cfg = cfg
	b.inited = true
	return nil
}

func (b *nullBackend) Caps() BackendCaps {
	return b.caps
}

func (b *nullBackend) Present(frame FrameView, mode PresentMode) error {
	if !b.inited {
		return ErrNotInitialized
	}
	return checkFrameGeometry(frame, b.cfg)
}

func (b *nullBackend) SetPowerSave(enable bool) error {
	if !b.caps.PowerSave {
		return ErrNotSupported
	}
	return nil
}

func (b *nullBackend) SetContrast(value byte) error {
	if !b.caps.Contrast {
		return ErrNotSupported
	}
	return nil
}
