package drivers

import (
	"context"
	"errors"
	"math"
	"time"

	"paneplot/config"
)

// SYNTH_PORT is the only port the synth driver offers.
const SYNTH_PORT = "sine"

var errBadRate = errors.New("synth rate must be positive")

// Synth publishes sin(2πft)+1 at a fixed sample rate, for running the workspace without hardware.
type Synth struct {
	*config.SynthFlags
}

func NewSynth(synthFlags *config.SynthFlags) *Synth {
	return &Synth{SynthFlags: synthFlags}
}

func (s *Synth) Init() error {
	if s.Rate <= 0 {
		return errBadRate
	}
	return nil
}

func (s *Synth) Run(ctx context.Context, publish Publish) error {
	period := time.Duration(float64(time.Second) / s.Rate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			publish(s.sample(n))
		}
	}
}

func (s *Synth) Close() error {
	return nil
}

func (s *Synth) sample(n int) float32 {
	t := float64(n) / s.Rate
	return float32(math.Sin(2*math.Pi*s.Frequency*t) + 1)
}
