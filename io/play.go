package io

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"
)

// Backend selects the audio library used for playback.
type Backend string

const (
	Malgo Backend = "malgo"
	Oto   Backend = "oto"
)

// ParseBackend checks a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case Malgo, Oto:
		return b, nil
	}
	return "", fmt.Errorf("unknown playback backend %q, want %q or %q", s, Malgo, Oto)
}

// Play plays mono 16 bit samples on the default output device. It blocks
// until they have all been played or ctx is cancelled.
func Play(ctx context.Context, backend Backend, samples []int16, rate int) error {
	switch backend {
	case Malgo:
		return playMalgo(ctx, samples, rate)
	case Oto:
		return playOto(ctx, samples, rate)
	}
	return fmt.Errorf("unknown playback backend %q", backend)
}

func playMalgo(ctx context.Context, samples []int16, rate int) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return err
	}
	defer func() {
		mctx.Uninit()
		mctx.Free()
	}()
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = uint32(rate)

	var (
		pos  int
		once sync.Once
		done = make(chan struct{})
	)
	send := func(out, _ []byte, framecount uint32) {
		n := int(framecount)
		if pos < len(samples) {
			k := min(n, len(samples)-pos)
			putPCM(out, samples[pos:pos+k])
			clear(out[2*k : 2*n])
			pos += k
			return
		}
		clear(out[:2*n])
		once.Do(func() { close(done) })
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: send,
	})
	if err != nil {
		return err
	}
	defer device.Uninit()
	if err := device.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
	return nil
}

func playOto(ctx context.Context, samples []int16, rate int) error {
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return err
	}
	<-ready

	buf := make([]byte, 2*len(samples))
	putPCM(buf, samples)
	p := octx.NewPlayer(bytes.NewReader(buf))
	p.Play()

	t := time.NewTicker(20 * time.Millisecond)
	defer t.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return p.Close()
		case <-t.C:
		}
	}
	if err := p.Err(); err != nil {
		return err
	}
	return p.Close()
}

// putPCM writes samples to out as little-endian 16 bit words.
func putPCM(out []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
}
