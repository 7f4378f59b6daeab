// Package audio is the oto-based audio sink: it wires Console's push-style
// AudioCallback (interleaved 16-bit stereo samples, produced whenever the
// AI completes a DMA descriptor) into oto's pull-style Reader, by way of a
// small ring buffer.
//
// Adapted from the teacher's OtoPlayer (audio_backend_oto.go): the same
// oto.Context/oto.Player lifecycle (NewContext, <-ready, NewPlayer, Play,
// Close), the same atomic-pointer-free-hot-path mutex discipline, but the
// Read method drains a ring buffer fed by Console's push callback instead
// of pulling from a SoundChip's own internal ring, since the AI model is a
// producer, not a pollable generator.
package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/kestrel64/kestrel64/core"
)

const ringCapacitySamples = 1 << 16 // interleaved stereo int16 samples

// Sink is an oto.Reader fed by Console's audio callback.
type Sink struct {
	ctx    *oto.Context
	player *oto.Player

	mutex   sync.Mutex
	ring    []int16
	head    int
	tail    int
	size    int
	started bool
}

// New opens an oto playback context at the fixed sampleRate and two
// channels. Samples from Callback are played at this rate whatever the AI
// frequency is; no resampling is done here.
func New(sampleRate int) (*Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	s := &Sink{ctx: ctx, ring: make([]int16, ringCapacitySamples)}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Callback matches core.AudioCallback: it copies samples into the ring,
// dropping the oldest unread frames if the host hasn't drained fast enough
// rather than blocking the CPU/AI stepping loop.
func (s *Sink) Callback(samples []int16, frameCount uint32, rateHz int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, v := range samples {
		s.ring[s.tail] = v
		s.tail = (s.tail + 1) % len(s.ring)
		if s.size == len(s.ring) {
			s.head = (s.head + 1) % len(s.ring)
		} else {
			s.size++
		}
	}
}

// Read implements io.Reader for oto.Player; p is a byte buffer of
// interleaved little-endian int16 samples. Underrun is filled with silence
// rather than blocking, since oto expects Read to return promptly.
func (s *Sink) Read(p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	n := len(p) / 2
	for i := 0; i < n; i++ {
		var v int16
		if s.size > 0 {
			v = s.ring[s.head]
			s.head = (s.head + 1) % len(s.ring)
			s.size--
		}
		p[i*2+0] = byte(uint16(v))
		p[i*2+1] = byte(uint16(v) >> 8)
	}
	return len(p), nil
}

// Bind wires this sink as console's audio callback.
func (s *Sink) Bind(console *core.Console) { console.SetAudioCallback(s.Callback) }

func (s *Sink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.started {
		s.player.Play()
		s.started = true
	}
}

func (s *Sink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.started {
		s.player.Pause()
		s.started = false
	}
}

func (s *Sink) Close() error {
	s.Stop()
	return s.player.Close()
}
