package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// TestSoundManagerGracefulDegradation verifies audio operations don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(DefaultConfig(), nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	sm.PlayKeyPress(1.4)
	sm.StartAmbient()
	sm.StopAmbient()
	sm.PlayCompletion()
	sm.Cleanup()

	if sm.Active() || ambientPlaying(sm) {
		t.Error("uninitialized manager should report inactive")
	}
}

// TestSoundManagerDisabled verifies a disabled manager never opens the speaker
func TestSoundManagerDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	sm := NewSoundManager(cfg, nil)

	if err := sm.Initialize(); err != nil {
		t.Fatalf("Initialize() on disabled audio: %v", err)
	}
	if sm.Active() {
		t.Error("disabled manager should stay inactive")
	}
}

// TestSoundManagerAmbientLifecycle exercises start/stop when a device exists
func TestSoundManagerAmbientLifecycle(t *testing.T) {
	sm := NewSoundManager(DefaultConfig(), nil)

	// Speaker initialization may fail in CI/test environments without audio devices
	if err := sm.Initialize(); err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}
	defer sm.Cleanup()

	// Second initialization should be a no-op
	if err := sm.Initialize(); err != nil {
		t.Errorf("Second initialization should succeed as no-op, got error: %v", err)
	}

	if ambientPlaying(sm) {
		t.Error("ambient should start paused")
	}
	sm.StartAmbient()
	sm.StartAmbient()
	if !ambientPlaying(sm) {
		t.Error("ambient should be playing after StartAmbient")
	}
	sm.StopAmbient()
	if ambientPlaying(sm) {
		t.Error("ambient should be paused after StopAmbient")
	}

	sm.PlayKeyPress(1.2)
	sm.PlayKeyPress(0)
	sm.PlayCompletion()
}

func TestSynthesizedCues(t *testing.T) {
	tests := []struct {
		cue    Cue
		minLen time.Duration
		maxLen time.Duration
	}{
		{CueKeyPress, 50 * time.Millisecond, 100 * time.Millisecond},
		{CueAmbient, 2 * time.Second, 2 * time.Second},
		{CueCompletion, 700 * time.Millisecond, 800 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.cue.String(), func(t *testing.T) {
			buf := synthesize(tc.cue)
			got := buf.Len()
			if got < sampleRate.N(tc.minLen) || got > sampleRate.N(tc.maxLen) {
				t.Errorf("len = %d samples, expected between %d and %d",
					got, sampleRate.N(tc.minLen), sampleRate.N(tc.maxLen))
			}
		})
	}
}

func TestLoadCueWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	// 22050Hz source forces a resample to the mixer rate
	srcFmt := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(2205), srcFmt); err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	f.Close()

	buf, err := loadCue(path)
	if err != nil {
		t.Fatalf("loadCue: %v", err)
	}
	// 0.1s at 44.1kHz, allowing for resampler edges
	if n := buf.Len(); n < 4000 || n > 4500 {
		t.Errorf("len = %d, expected about 4410", n)
	}
}

func TestLoadCueErrors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not a wave file"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "cue.ogg")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.mp3")},
		{"undecodable", bogus},
		{"unsupported", other},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadCue(tc.path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadCuesFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyPress = filepath.Join(t.TempDir(), "missing.mp3")
	sm := NewSoundManager(cfg, nil)

	sm.loadCues()

	for _, c := range []Cue{CueKeyPress, CueAmbient, CueCompletion} {
		if buf := sm.cues[c]; buf == nil || buf.Len() == 0 {
			t.Errorf("cue %v not loaded", c)
		}
	}
}

func ambientPlaying(sm *SoundManager) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !sm.ambient.Paused
}
