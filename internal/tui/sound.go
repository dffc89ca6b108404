package tui

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue names a game moment that has a sound.
type Cue int

const (
	CueSnap Cue = iota
	CueMiss
	CueWin
	CueTimeout
)

// Sounds plays cues. Implementations must not block the game loop.
type Sounds interface {
	Play(Cue)
}

// Silent discards every cue.
type Silent struct{}

func (Silent) Play(Cue) {}

// Speaker plays cues through the system audio device.
type Speaker struct {
	mu    sync.Mutex
	ready bool
}

// NewSpeaker initializes the audio device. Callers fall back to Silent when
// it fails; the game runs fine without sound.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Speaker{ready: true}, nil
}

func (s *Speaker) Play(cue Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	if streamer := cueStreamer(cue); streamer != nil {
		speaker.Play(streamer)
	}
}

// Close stops playback.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	speaker.Clear()
	s.ready = false
}

type note struct {
	freq     float64
	duration time.Duration
}

var cueNotes = map[Cue][]note{
	CueSnap:    {{880, 60 * time.Millisecond}},
	CueMiss:    {{220, 120 * time.Millisecond}},
	CueWin:     {{660, 120 * time.Millisecond}, {880, 120 * time.Millisecond}, {1320, 240 * time.Millisecond}},
	CueTimeout: {{330, 200 * time.Millisecond}, {180, 400 * time.Millisecond}},
}

func cueStreamer(cue Cue) beep.Streamer {
	notes, ok := cueNotes[cue]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		sine, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(sampleRate.N(n.duration), sine))
	}
	if len(parts) == 0 {
		return nil
	}
	return beep.Seq(parts...)
}
