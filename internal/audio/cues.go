package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Cue identifies one of the game's sounds.
type Cue int

const (
	CueKeyPress Cue = iota
	CueAmbient
	CueCompletion
)

func (c Cue) String() string {
	switch c {
	case CueKeyPress:
		return "keypress"
	case CueAmbient:
		return "ambient"
	case CueCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// format is the in-memory format every cue is converted to.
var format = beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}

// loadCue decodes an mp3 or wav file into a buffer at the mixer sample rate.
func loadCue(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}

	var (
		stream beep.StreamSeekCloser
		srcFmt beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, srcFmt, err = mp3.Decode(f)
	case ".wav":
		stream, srcFmt, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("audio: %s: unsupported format", path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if srcFmt.SampleRate != sampleRate {
		s = beep.Resample(4, srcFmt.SampleRate, sampleRate, s)
	}

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("audio: read %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("audio: %s: no samples", path)
	}
	return buf, nil
}

// synthesize renders the built-in version of a cue.
func synthesize(c Cue) *beep.Buffer {
	buf := beep.NewBuffer(format)
	switch c {
	case CueKeyPress:
		buf.Append(tone(1320, 60*time.Millisecond, 40))
	case CueAmbient:
		// Two detuned low tones; 2s so the loop point is seamless at 55Hz
		buf.Append(beep.Mix(
			volume(sustained(55, 2*time.Second), 0.5),
			volume(sustained(82.5, 2*time.Second), 0.25),
		))
	case CueCompletion:
		buf.Append(beep.Seq(
			tone(523.25, 120*time.Millisecond, 12),
			tone(659.25, 120*time.Millisecond, 12),
			tone(783.99, 120*time.Millisecond, 12),
			tone(1046.5, 400*time.Millisecond, 6),
		))
	}
	return buf
}

// tone is a sine note of length d with exponential decay k.
func tone(freq float64, d time.Duration, k float64) beep.Streamer {
	return &decay{
		Streamer: sustained(freq, d),
		rate:     sampleRate,
		k:        k,
	}
}

func sustained(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	return beep.Take(sampleRate.N(d), sine)
}

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// decay applies an exp(-k*t) envelope.
type decay struct {
	beep.Streamer
	rate beep.SampleRate
	k    float64
	pos  int
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := d.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		t := float64(d.pos) / float64(d.rate)
		env := 0.4 * math.Exp(-d.k*t)
		samples[i][0] *= env
		samples[i][1] *= env
		d.pos++
	}
	return n, ok
}
