package monodraw

// Frame contains a set of operations for drawing one step of a series.
// Because the surface tracks what the operations touch, every frame is
// effectively a delta against the previously drawn one.
type Frame struct {
	Ops         []DrawOp
	Transitions []Transition
}

// Draw replays the frame's operations into a surface.
func (frame *Frame) Draw(surface *Surface) error {
	for _, op := range frame.Ops {
		if err := op.Draw(surface); err != nil {
			return err
		}
	}
	return nil
}

// IsTransitionFrame reports whether the player may branch to another
// scene from this frame.
func (frame *Frame) IsTransitionFrame() bool {
	return frame.Transitions != nil
}

// SeriesForTransition returns the name of the frame series to play when
// moving to the destination scene from this frame.
func (frame *Frame) SeriesForTransition(destSceneName string) (string, bool) {
	for _, transition := range frame.Transitions {
		if transition.DestSceneName == destSceneName {
			return transition.FrameSeriesName, true
		}
	}
	return "", false
}

// Transition marks a frame the player may leave the current scene from.
// An empty FrameSeriesName switches scenes without intermediate frames.
type Transition struct {
	DestSceneName   string
	FrameSeriesName string
}

// FrameSeries is a named sequence of frames.
type FrameSeries struct {
	Name   string
	Frames []Frame
}

// Scene binds a name to the frame series looped while the scene is
// active.
type Scene struct {
	Name            string
	FrameSeriesName string
}
