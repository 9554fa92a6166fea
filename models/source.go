package models

import "errors"

var ErrSourceDisconnected = errors.New("data source disconnected")

// Source is polled once or more per tick for new samples. TryReceive never blocks: no sample available is
// (0, false, nil), and once the producer is gone it returns ErrSourceDisconnected.
type Source interface {
	TryReceive() (sample float32, ok bool, err error)
}

// ChannelSource adapts a subscription channel to Source. A closed channel means the producer stopped.
type ChannelSource struct {
	samples <-chan float32
	cancel  func()
}

func NewChannelSource(samples <-chan float32, cancel func()) *ChannelSource {
	return &ChannelSource{samples, cancel}
}

func (s *ChannelSource) TryReceive() (float32, bool, error) {
	select {
	case sample, ok := <-s.samples:
		if !ok {
			return 0, false, ErrSourceDisconnected
		}
		return sample, true, nil
	default:
		return 0, false, nil
	}
}

// Close drops the subscription.
func (s *ChannelSource) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}
