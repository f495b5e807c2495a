package monodraw

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type playerState int

const (
	// Loop playback of current scene frames
	psPlayCurrentScene playerState = iota
	// Initialized scene change
	psInitChangeScene
	// Play frames of the current scene and look for a transition frame
	psFindTransitionFrame
	// Play a series of transition frames to move to the next scene
	psTransitionToNextScene
)

const defaultFrameRate = 25

// Player loops frame series into a presenter at a fixed rate. It is a
// host-side helper above the presentation core: it draws each frame into
// the presenter's surface and submits it with PresentFrame. A submit
// rejected with ErrBusy (asynchronous transfer still outstanding) counts
// as a dropped frame and is never queued.
type Player struct {
	presenter      *Presenter
	allScenes      []Scene
	allFrameSeries []FrameSeries

	frameRate int

	mutex            sync.Mutex
	isRunning        bool
	sceneName        string
	nextSceneName    *string
	sceneChangedCond *sync.Cond
	sceneChangedErr  error

	state playerState

	playedFrames    []Frame
	currentFrameNum int

	startFindTransitionFrameNum int
}

// NewPlayer creates a Player over an initialized presenter.
func NewPlayer(presenter *Presenter, allScenes []Scene, allFrameSeries []FrameSeries) (*Player, error) {
	if presenter == nil {
		return nil, ErrInvalidArgument
	}

	player := &Player{
		presenter:      presenter,
		allScenes:      allScenes,
		allFrameSeries: allFrameSeries,
		frameRate:      defaultFrameRate,
		state:          psPlayCurrentScene,
	}
	player.sceneChangedCond = sync.NewCond(&player.mutex)
	return player, nil
}

// SetFrameRate changes the playback rate. Takes effect on the next
// Start.
func (player *Player) SetFrameRate(framesPerSecond int) error {
	if framesPerSecond <= 0 {
		return ErrInvalidArgument
	}
	player.mutex.Lock()
	defer player.mutex.Unlock()
	if player.isRunning {
		return ErrBusy
	}
	player.frameRate = framesPerSecond
	return nil
}

// Start begins playback of the named scene.
func (player *Player) Start(initSceneName string) error {
	player.mutex.Lock()
	defer player.mutex.Unlock()

	if player.isRunning {
		return errors.New("player is already running")
	}

	if err := player.setScene(initSceneName); err != nil {
		return err
	}

	player.isRunning = true
	go player.doDraw()
	return nil
}

// Stop ends playback after the current frame.
func (player *Player) Stop() {
	player.mutex.Lock()
	player.isRunning = false
	player.mutex.Unlock()
}

// ChangeScene switches to the named scene. It blocks until the current
// scene reaches a frame with a transition to the destination and any
// transition series finished playing, or fails when no such frame comes
// around within one loop of the scene.
func (player *Player) ChangeScene(nextSceneName string) error {
	player.mutex.Lock()
	defer player.mutex.Unlock()

	if !player.isRunning {
		return errors.New("player is not running")
	}

	if player.nextSceneName != nil || player.state != psPlayCurrentScene {
		return errors.New("player is already making a scene change")
	}

	if player.sceneName == nextSceneName {
		return nil
	}

	player.nextSceneName = &nextSceneName
	player.state = psInitChangeScene
	player.sceneChangedCond.Wait()
	player.nextSceneName = nil

	return player.sceneChangedErr
}

func (player *Player) doDraw() {
	droppedFrameCount := 0
	showFrameDuration := time.Duration(1000/player.frameRate) * time.Millisecond
	showNextFrameTime := time.Now()
	for {
		frame := player.getCurrentFrame()
		if frame == nil {
			break
		}

		showNextFrameTime = showNextFrameTime.Add(showFrameDuration)
		if time.Until(showNextFrameTime) <= 0 {
			droppedFrameCount++
			if droppedFrameCount%100 == 0 {
				log.Warnf("Player: the number of dropped frames: %v", droppedFrameCount)
			}
			continue
		}

		surface := player.presenter.Surface()
		if err := frame.Draw(surface); err != nil {
			log.WithError(err).Error("Player: frame draw failed")
		} else if err := player.presenter.PresentFrame(PresentAuto); err != nil {
			if errors.Is(err, ErrBusy) {
				// Transfer still outstanding; drop this frame.
				droppedFrameCount++
				if droppedFrameCount%100 == 0 {
					log.Warnf("Player: the number of dropped frames: %v", droppedFrameCount)
				}
			} else {
				log.WithError(err).Error("Player: present failed")
			}
		}
		time.Sleep(time.Until(showNextFrameTime))
	}
}

func (player *Player) getCurrentFrame() *Frame {
	player.mutex.Lock()
	defer player.mutex.Unlock()

	if !player.isRunning {
		return nil
	}

	if player.state == psPlayCurrentScene {
		return player.getCurrentSceneFrame()
	}

	if player.state == psInitChangeScene {
		player.state = psFindTransitionFrame
		player.startFindTransitionFrameNum = player.currentFrameNum
	}

	if player.state == psFindTransitionFrame {
		return player.tryInitTransitionToNextScene()
	}

	// psTransitionToNextScene
	return player.getCurrentTransitionFrame()
}

func (player *Player) getCurrentSceneFrame() *Frame {
	frame := &player.playedFrames[player.currentFrameNum]
	player.currentFrameNum = (player.currentFrameNum + 1) % len(player.playedFrames)
	return frame
}

func (player *Player) tryInitTransitionToNextScene() *Frame {
	frame := player.getCurrentSceneFrame()

	if !frame.IsTransitionFrame() {
		player.checkFindTransitionFrameLooping()
		return frame
	}

	transitionFrameSeriesName, ok := frame.SeriesForTransition(*player.nextSceneName)
	if !ok {
		player.checkFindTransitionFrameLooping()
		return frame
	}

	var transitionFrames []Frame
	if transitionFrameSeriesName != "" {
		transitionFrameSeries := player.findFrameSeriesByName(transitionFrameSeriesName)
		if transitionFrameSeries == nil {
			err := fmt.Errorf("could not find a series of frames named '%s'", transitionFrameSeriesName)
			player.finishChangeScene(err)
			return frame
		}
		transitionFrames = transitionFrameSeries.Frames
	}

	player.state = psTransitionToNextScene
	player.playedFrames = transitionFrames
	player.currentFrameNum = 0
	return frame
}

func (player *Player) getCurrentTransitionFrame() *Frame {
	if player.currentFrameNum < len(player.playedFrames) {
		frame := &player.playedFrames[player.currentFrameNum]
		player.currentFrameNum++
		return frame
	}

	player.finishChangeScene(nil)
	return player.getCurrentSceneFrame()
}

func (player *Player) checkFindTransitionFrameLooping() {
	if player.currentFrameNum == player.startFindTransitionFrameNum {
		err := fmt.Errorf("could not find a transition frame for switch from '%s' to '%s'",
			player.sceneName, *player.nextSceneName)
		player.finishChangeScene(err)
	}
}

func (player *Player) finishChangeScene(err error) {
	oldScene := player.sceneName

	if err == nil {
		err = player.setScene(*player.nextSceneName)
	}

	if err != nil {
		player.setScene(oldScene)
	}

	player.sceneChangedErr = err
	player.sceneChangedCond.Signal()
}

func (player *Player) setScene(sceneName string) error {
	scene := player.findSceneByName(sceneName)
	if scene == nil {
		return fmt.Errorf("could not find a scene named '%s'", sceneName)
	}

	frameSeries := player.findFrameSeriesByName(scene.FrameSeriesName)
	if frameSeries == nil {
		return fmt.Errorf("could not find a series of frames named '%s'", scene.FrameSeriesName)
	}

	if len(frameSeries.Frames) == 0 {
		return fmt.Errorf("the frame series for scene '%s' is empty", sceneName)
	}

	player.sceneName = sceneName
	player.playedFrames = frameSeries.Frames
	player.currentFrameNum = 0
	player.state = psPlayCurrentScene
	return nil
}

func (player *Player) findFrameSeriesByName(frameSeriesName string) *FrameSeries {
	for i := range player.allFrameSeries {
		if player.allFrameSeries[i].Name == frameSeriesName {
			return &player.allFrameSeries[i]
		}
	}
	return nil
}

func (player *Player) findSceneByName(sceneName string) *Scene {
	for i := range player.allScenes {
		if player.allScenes[i].Name == sceneName {
			return &player.allScenes[i]
		}
	}
	return nil
}
