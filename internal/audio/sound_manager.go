// Package audio plays the game's three sound cues through a beep mixer:
// a pitched key press blip, a looping ambient track and a completion jingle.
// Audio is optional; when the speaker cannot be opened every call is a no-op.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Config selects cue files and the ambient volume. Empty paths use the
// synthesized cues.
type Config struct {
	Enabled    bool    `yaml:"enabled"`
	KeyPress   string  `yaml:"keypress"`
	Ambient    string  `yaml:"ambient"`
	Completion string  `yaml:"completion"`
	Volume     float64 `yaml:"volume"` // ambient loop volume, linear
}

// DefaultConfig returns synthesized cues with the ambient loop at half volume.
func DefaultConfig() Config {
	return Config{Enabled: true, Volume: 0.5}
}

// SoundManager manages all game audio
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	logger      *log.Logger
	cues        map[Cue]*beep.Buffer
	ambient     *beep.Ctrl
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a sound manager. Nothing is played until Initialize
// succeeds.
func NewSoundManager(cfg Config, logger *log.Logger) *SoundManager {
	if logger == nil {
		logger = log.Default()
	}
	return &SoundManager{
		cfg:    cfg,
		logger: logger,
		cues:   make(map[Cue]*beep.Buffer),
		mixer:  &beep.Mixer{},
	}
}

// Initialize loads the cues and opens the speaker. On error the manager stays
// silent and the game runs without sound.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	sm.loadCues()

	sm.ambient = &beep.Ctrl{Streamer: sm.ambientStream(), Paused: true}
	speaker.Play(sm.mixer)
	speaker.Lock()
	sm.mixer.Add(sm.ambient)
	speaker.Unlock()

	sm.initialized = true
	return nil
}

// loadCues fills sm.cues once, falling back to the synthesized cue when a
// file is missing or unreadable.
func (sm *SoundManager) loadCues() {
	files := map[Cue]string{
		CueKeyPress:   sm.cfg.KeyPress,
		CueAmbient:    sm.cfg.Ambient,
		CueCompletion: sm.cfg.Completion,
	}
	for cue, path := range files {
		if path != "" {
			buf, err := loadCue(path)
			if err == nil {
				sm.cues[cue] = buf
				continue
			}
			sm.logger.Warn("audio cue unavailable, using built-in", "cue", cue, "err", err)
		}
		sm.cues[cue] = synthesize(cue)
	}
}

func (sm *SoundManager) ambientStream() beep.Streamer {
	buf := sm.cues[CueAmbient]
	return volume(beep.Loop(-1, buf.Streamer(0, buf.Len())), sm.cfg.Volume)
}

// Cleanup stops all sounds and closes the audio system
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.ambient.Paused = true
	sm.mixer.Clear()
	speaker.Unlock()

	sm.initialized = false
}

// PlayKeyPress plays the key press cue at the given playback rate.
// A rate above 1 raises pitch and shortens the cue.
func (sm *SoundManager) PlayKeyPress(rate float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	if rate <= 0 || math.IsNaN(rate) {
		rate = 1
	}

	buf := sm.cues[CueKeyPress]
	s := beep.ResampleRatio(4, rate, buf.Streamer(0, buf.Len()))
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// StartAmbient resumes the ambient loop. Starting an already playing loop
// is a no-op.
func (sm *SoundManager) StartAmbient() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.ambient.Paused = false
	speaker.Unlock()
	sm.logger.Debug("ambient started")
}

// StopAmbient pauses the ambient loop and rewinds it to the beginning.
func (sm *SoundManager) StopAmbient() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.ambient.Paused = true
	sm.ambient.Streamer = sm.ambientStream()
	speaker.Unlock()
}

// PlayCompletion plays the level-set completion cue once.
func (sm *SoundManager) PlayCompletion() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	buf := sm.cues[CueCompletion]
	speaker.Lock()
	sm.mixer.Add(buf.Streamer(0, buf.Len()))
	speaker.Unlock()
}

// Active reports whether audio output is open.
func (sm *SoundManager) Active() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}
