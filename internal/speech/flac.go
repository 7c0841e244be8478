package speech

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/orcaman/writerseeker"
)

const (
	flacBlockSize   = 4096
	flacMinBlock    = 16
	flacMaxChannels = 8
)

// EncodeFLAC encodes buf as FLAC using verbatim subframes. The encoder fills
// in the MD5 sum and frame sizes when it is closed.
func EncodeFLAC(buf *audio.IntBuffer) ([]byte, error) {
	if err := checkBuffer(buf); err != nil {
		return nil, err
	}
	nChannels := buf.Format.NumChannels
	if nChannels > flacMaxChannels {
		return nil, fmt.Errorf("FLAC supports at most %d channels, got %d", flacMaxChannels, nChannels)
	}
	bps := bitDepth(buf)
	nFrames := len(buf.Data) / nChannels

	streamInfo := &meta.StreamInfo{
		BlockSizeMin:  flacMinBlock,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(buf.Format.SampleRate),
		NChannels:     uint8(nChannels),
		BitsPerSample: uint8(bps),
		NSamples:      uint64(nFrames),
	}

	out := &writerseeker.WriterSeeker{}
	enc, err := flac.NewEncoder(out, streamInfo)
	if err != nil {
		return nil, fmt.Errorf("creating FLAC encoder: %w", err)
	}

	// WAV stores 8-bit samples unsigned, FLAC signed.
	offset := 0
	if bps == 8 {
		offset = 128
	}

	for num, start := uint64(0), 0; start < nFrames; num, start = num+1, start+flacBlockSize {
		end := start + flacBlockSize
		if end > nFrames {
			end = nFrames
		}
		n := end - start

		subframes := make([]*frame.Subframe, nChannels)
		for ch := range subframes {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = int32(buf.Data[(start+i)*nChannels+ch] - offset)
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		flacFrame := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(buf.Format.SampleRate),
				Channels:          frame.Channels(nChannels - 1),
				BitsPerSample:     uint8(bps),
				Num:               num,
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(flacFrame); err != nil {
			enc.Close()
			return nil, fmt.Errorf("writing FLAC frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing FLAC encoder: %w", err)
	}

	flacData, err := io.ReadAll(out.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading encoded FLAC: %w", err)
	}
	return flacData, nil
}
