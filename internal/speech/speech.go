// Package speech decodes the voice replies of the service and exports clips
// as WAV or FLAC.
package speech

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const wavFormatPCM = 1

var ErrInvalidWAV = errors.New("not a valid WAV clip")

// Decode reads a whole WAV clip into a PCM buffer.
func Decode(data []byte) (*audio.IntBuffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(d.BitDepth)
	}
	return buf, nil
}

// EncodeWAV encodes buf as a PCM WAV clip.
func EncodeWAV(buf *audio.IntBuffer) ([]byte, error) {
	if err := checkBuffer(buf); err != nil {
		return nil, err
	}

	file := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(file, buf.Format.SampleRate, bitDepth(buf), buf.Format.NumChannels, wavFormatPCM)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("writing WAV samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("closing WAV encoder: %w", err)
	}

	wavData, err := io.ReadAll(file.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading encoded WAV: %w", err)
	}
	return wavData, nil
}

// WriteFile saves buf to path. The format follows the file extension: .flac
// writes FLAC, anything else WAV.
func WriteFile(path string, buf *audio.IntBuffer) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		data, err = EncodeFLAC(buf)
	default:
		data, err = EncodeWAV(buf)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Duration is the play time of buf.
func Duration(buf *audio.IntBuffer) time.Duration {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate == 0 || buf.Format.NumChannels == 0 {
		return 0
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	return time.Duration(frames) * time.Second / time.Duration(buf.Format.SampleRate)
}

func checkBuffer(buf *audio.IntBuffer) error {
	if buf == nil || buf.Format == nil {
		return errors.New("audio buffer has no format")
	}
	if buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return fmt.Errorf("invalid audio format: %d channels at %d Hz", buf.Format.NumChannels, buf.Format.SampleRate)
	}
	return nil
}

func bitDepth(buf *audio.IntBuffer) int {
	if buf.SourceBitDepth > 0 {
		return buf.SourceBitDepth
	}
	return 16
}
