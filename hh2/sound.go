package hh2

import (
	"io"
	"time"

	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"

	"github.com/flga/hh2/hh2/hh2log"
	"github.com/flga/hh2/hh2/internal/meter"
)

// SampleRate is the mixer's fixed system rate.
const SampleRate = 44100

// FramesPerVideoFrame is the number of stereo frames one Mix call produces,
// at 60 video frames per second.
const FramesPerVideoFrame = SampleRate / 60

// MaxChannels is the highest channel count a WAV source may declare; beyond
// this the mixer has no defined mix-down and DecodeWAV fails.
const MaxChannels = 8

// soundKind distinguishes a Sound's backing payload.
type soundKind int

const (
	soundWAV soundKind = iota
	soundVorbis
)

// Sound is decoded audio ready to be played through a Mixer. A WAV Sound
// owns its fully-decoded interleaved stereo buffer; a Vorbis Sound streams
// from a retained decoder instead of decoding eagerly.
type Sound struct {
	kind soundKind

	// WAV payload: interleaved stereo i16 frames at SampleRate.
	frames []int16

	// Vorbis payload: streaming decoder, read lazily by each Voice.
	vorbisReader *oggvorbis.Reader
	vorbisCloser io.Closer
}

// DecodeWAV decodes a WAV stream into a Sound. Mono is upmixed to stereo by
// duplicating the channel; more than MaxChannels is rejected. If the file's
// sample rate differs from SampleRate, the decoded buffer is resampled
// end-to-end before being stored.
func DecodeWAV(r io.ReadSeeker) (*Sound, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, newDecodeError("wav", errNotRIFFWave)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, newDecodeError("wav", err)
	}

	channels := buf.Format.NumChannels
	if channels > MaxChannels {
		logger.Logf(hh2log.Warn, "SND", "wav has %d channels, max is %d", channels, MaxChannels)
		return nil, &UnsupportedChannelsError{Found: channels}
	}

	stereo := upmixToStereo(buf.Data, channels)

	if buf.Format.SampleRate != SampleRate {
		resampled, err := resampleStereo(stereo, buf.Format.SampleRate, SampleRate)
		if err != nil {
			logger.Logf(hh2log.Warn, "SND", "resample %dHz->%dHz failed: %s", buf.Format.SampleRate, SampleRate, err)
			return nil, err
		}
		stereo = resampled
	}

	frames := make([]int16, len(stereo))
	for i, s := range stereo {
		frames[i] = clampInt16(s)
	}

	return &Sound{kind: soundWAV, frames: frames}, nil
}

var errNotRIFFWave = errors.New("not a valid RIFF/WAVE stream")

// upmixToStereo converts channels-interleaved int samples to stereo
// interleaved, duplicating mono into both channels and dropping channels
// beyond the second for anything wider, matching the mixer's stereo-only
// output.
func upmixToStereo(data []int, channels int) []int {
	if channels == 2 {
		return data
	}

	frameCount := len(data) / channels
	out := make([]int, frameCount*2)

	for i := 0; i < frameCount; i++ {
		l := data[i*channels]
		r := l
		if channels > 1 {
			r = data[i*channels+1]
		}
		out[i*2] = l
		out[i*2+1] = r
	}

	return out
}

func clampInt16(v int) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}

// DecodeVorbis opens an Ogg Vorbis stream for streaming playback. Unlike
// DecodeWAV this does not decode the whole file up front: each Voice reads
// from the decoder as it plays.
func DecodeVorbis(r io.Reader) (*Sound, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, newDecodeError("vorbis", err)
	}

	var closer io.Closer
	if c, ok := r.(io.Closer); ok {
		closer = c
	}

	return &Sound{kind: soundVorbis, vorbisReader: reader, vorbisCloser: closer}, nil
}

// Close releases resources held by a streaming Vorbis Sound. WAV sounds
// need no cleanup.
func (s *Sound) Close() error {
	if s.vorbisCloser != nil {
		return s.vorbisCloser.Close()
	}
	return nil
}

// FinishedFunc is called once when a Voice naturally reaches the end of its
// Sound (and isn't repeating), or is stopped explicitly.
type FinishedFunc func(*Voice)

// Voice is one active playback of a Sound. Voices live in the Mixer's
// doubly-linked list, most-recently-played at the head, so stop/finish can
// unlink in O(1) while the mix step is iterating.
type Voice struct {
	sound      *Sound
	volume     uint8
	repeat     bool
	finishedCB FinishedFunc

	position int // sample index into sound.frames (two per stereo frame), for WAV

	prev, next *Voice
	mixer      *Mixer
}

// SetVolume changes the voice's mix volume (0-255, unity at 255).
func (v *Voice) SetVolume(volume uint8) {
	v.volume = volume
}

// Mixer sums the samples of every playing Voice into one stereo block per
// call to Mix, one block per video frame.
type Mixer struct {
	head *Voice

	scratch [FramesPerVideoFrame * 2]int32
	output  [FramesPerVideoFrame * 2]int16

	meter *meter.Meter
}

// NewMixer creates an empty Mixer.
func NewMixer() *Mixer {
	return &Mixer{meter: meter.New(meter.DefaultBufferLen)}
}

// Stats reports a rolling average of recent Mix durations, for host-side
// frame-pacing diagnostics: how many Mix calls of that average duration fit
// in one second, and the average duration in milliseconds.
func (m *Mixer) Stats() (rate int, ms float64) {
	return m.meter.Rate(), m.meter.Ms()
}

// Play starts a new Voice playing sound and head-inserts it into the voice
// list.
func (m *Mixer) Play(sound *Sound, volume uint8, repeat bool, finishedCB FinishedFunc) *Voice {
	v := &Voice{
		sound:      sound,
		volume:     volume,
		repeat:     repeat,
		finishedCB: finishedCB,
		mixer:      m,
	}

	v.next = m.head
	if m.head != nil {
		m.head.prev = v
	}
	m.head = v

	return v
}

// Stop removes v from the mixer's voice list, then invokes its finished
// callback, if any.
func (m *Mixer) Stop(v *Voice) {
	if v.mixer != m {
		return
	}
	m.unlink(v)
	logger.Logf(hh2log.Debug, "SND", "voice stopped")
	if v.finishedCB != nil {
		v.finishedCB(v)
	}
	v.mixer = nil
}

// KillAll stops every currently playing voice, matching hh2_stopPcms.
func (m *Mixer) KillAll() {
	for v := m.head; v != nil; {
		next := v.next
		m.Stop(v)
		v = next
	}
}

func (m *Mixer) unlink(v *Voice) {
	if v.prev != nil {
		v.prev.next = v.next
	} else {
		m.head = v.next
	}
	if v.next != nil {
		v.next.prev = v.prev
	}
	v.prev, v.next = nil, nil
}

// Mix sums every active voice into one FramesPerVideoFrame-sized stereo
// block, saturating to i16, and returns it. The returned slice is only
// valid until the next call to Mix.
func (m *Mixer) Mix() []int16 {
	start := time.Now()
	defer func() { m.meter.Record(time.Since(start)) }()

	for i := range m.scratch {
		m.scratch[i] = 0
	}

	for v := m.head; v != nil; {
		next := v.next // capture before a possible removal
		m.mixVoice(v)
		v = next
	}

	for i, s := range m.scratch {
		m.output[i] = clampInt32ToInt16(s)
	}

	return m.output[:]
}

func (m *Mixer) mixVoice(v *Voice) {
	switch v.sound.kind {
	case soundWAV:
		m.mixWAV(v)
	case soundVorbis:
		m.mixVorbis(v)
	}
}

// volFactor rounds an 8-bit volume into 8.8 fixed point, so 255 maps to
// 256 (unity), via the 'vol + (vol>=128 ? 1 : 0)' rounding rule.
func volFactor(volume uint8) int32 {
	v := int32(volume)
	if volume >= 128 {
		v++
	}
	return v
}

func (m *Mixer) mixWAV(v *Voice) {
	samples := v.sound.frames
	remaining := (len(samples) - v.position) / 2
	if remaining < 0 {
		remaining = 0
	}

	count := FramesPerVideoFrame
	if remaining < count {
		count = remaining
	}

	factor := volFactor(v.volume)
	src := samples[v.position : v.position+count*2]
	for i, s := range src {
		m.scratch[i] += int32(s) * factor / 256
	}

	v.position += count * 2

	if count < FramesPerVideoFrame {
		if v.repeat && len(samples) > 0 {
			v.position = 0
			m.mixWAVRemainder(v, FramesPerVideoFrame-count, count*2)
		} else {
			m.Stop(v)
		}
	}
}

// mixWAVRemainder mixes the wrap-around tail of a repeating voice into
// scratch starting at sampleOffset, after the voice's position has been
// reset to the start of its buffer.
func (m *Mixer) mixWAVRemainder(v *Voice, framesNeeded, sampleOffset int) {
	samples := v.sound.frames
	factor := volFactor(v.volume)

	for framesNeeded > 0 {
		available := len(samples) / 2
		count := framesNeeded
		if count > available {
			count = available
		}
		if count == 0 {
			return
		}

		src := samples[:count*2]
		for i, s := range src {
			m.scratch[sampleOffset+i] += int32(s) * factor / 256
		}

		sampleOffset += count * 2
		framesNeeded -= count
		v.position = count * 2 % len(samples)
	}
}

// mixVorbis streams one block from the voice's decoder directly into
// scratch. Unlike WAV voices, Vorbis voices do not repeat: the voice is
// stopped once its stream returns less than a full block or an error,
// whatever its repeat flag.
func (m *Mixer) mixVorbis(v *Voice) {
	buf := make([]float32, FramesPerVideoFrame*2)
	n, err := v.sound.vorbisReader.Read(buf)
	frames := n / 2

	factor := volFactor(v.volume)
	for i := 0; i < n; i++ {
		m.scratch[i] += int32(buf[i]*32767) * factor / 256
	}

	if frames < FramesPerVideoFrame || err != nil {
		m.Stop(v)
	}
}

// clampInt32ToInt16 saturates a mixed 32-bit accumulator sample into i16
// range.
func clampInt32ToInt16(s int32) int16 {
	if s < -32768 {
		return -32768
	}
	if s > 32767 {
		return 32767
	}
	return int16(s)
}
