// package io does audio in and out: WAV files and the default playback
// device.
package io

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmFormat is WAVE_FORMAT_PCM.
const pcmFormat = 1

// Format describes PCM audio.
type Format struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d bit, %d channel(s)", f.SampleRate, f.BitDepth, f.Channels)
}

// WAVWriter streams 16 bit PCM to a WAV file.
type WAVWriter struct {
	path string
	f    *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
	n    int
}

// CreateWAV creates (or truncates) the file at path. Only 16 bit samples are
// supported.
func CreateWAV(path string, rate, depth, channels int) (*WAVWriter, error) {
	if depth != 16 {
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, depth)
	}
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%s: invalid format: %d Hz, %d channels", path, rate, channels)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &WAVWriter{
		path: path,
		f:    f,
		enc:  wav.NewEncoder(f, rate, depth, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: depth,
		},
	}, nil
}

// WriteSamples appends interleaved samples.
func (w *WAVWriter) WriteSamples(s []int16) error {
	if cap(w.buf.Data) < len(s) {
		w.buf.Data = make([]int, len(s))
	}
	w.buf.Data = w.buf.Data[:len(s)]
	for i, v := range s {
		w.buf.Data[i] = int(v)
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}
	w.n += len(s)
	return nil
}

// Samples is the number of samples written so far.
func (w *WAVWriter) Samples() int { return w.n }

// Close finishes the header and closes the file.
func (w *WAVWriter) Close() error {
	var err error
	if w.n == 0 {
		// the encoder only writes its header along with the first samples.
		err = w.WriteSamples(nil)
	}
	if err == nil {
		err = w.enc.Close()
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}
	return nil
}

// ReadWAV reads a whole 16 bit PCM WAV file.
func ReadWAV(path string) ([]int16, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Format{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, Format{}, fmt.Errorf("%s: not a valid WAV file", path)
	}
	format := Format{
		SampleRate: int(d.SampleRate),
		BitDepth:   int(d.BitDepth),
		Channels:   int(d.NumChans),
	}
	if d.WavAudioFormat != pcmFormat || format.BitDepth != 16 {
		return nil, format, fmt.Errorf("%s: want 16 bit PCM, got format %d at %d bits", path, d.WavAudioFormat, format.BitDepth)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = int16(v)
	}
	return out, format, nil
}
