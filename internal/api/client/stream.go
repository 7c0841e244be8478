package client

import (
	"bytes"
	"context"

	"github.com/bz888/koalagpt/internal/api/codec"
	"github.com/bz888/koalagpt/internal/logger"
)

var (
	dataPrefix = []byte("data: ")
	sentinel   = []byte("[DONE]")
)

// streamSession is the parse state of one stream. offset is the number of
// buffer bytes already turned into frame decisions.
type streamSession[T any] struct {
	offset  int
	decoded int
	log     *logger.Logger
}

// poll decides every complete line past the consumed offset. A trailing line
// without a newline is kept for a later poll unless the transfer is done.
// Lines after the sentinel are dropped.
func (s *streamSession[T]) poll(buf []byte, done bool) (batch []T, finished bool) {
	batch = []T{}

	for s.offset < len(buf) {
		pending := buf[s.offset:]

		var line []byte
		if i := bytes.IndexByte(pending, '\n'); i >= 0 {
			line = pending[:i]
			s.offset += i + 1
		} else if done {
			line = pending
			s.offset = len(buf)
		} else {
			break
		}

		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		line = bytes.TrimPrefix(line, dataPrefix)

		if bytes.Contains(line, sentinel) {
			s.offset = len(buf)
			return batch, true
		}

		frame, err := decodeResult[T](line)
		if err != nil {
			s.log.Warnw("frame decode failed", "error", err)
			continue
		}
		s.decoded++

		if frame.Failed() {
			s.log.Errorw("service error", "message", frame.Err.Message, "type", frame.Err.Type)
			continue
		}
		batch = append(batch, frame.Value)
	}
	return batch, false
}

// dispatchStream sends v to path and forwards the decoded frames of the
// reply to onFrame, one batch per poll, until the sentinel arrives, the body
// ends or ctx is cancelled. onComplete is called exactly once on every exit.
// Cancellation is checked between polls only and is not an error.
func dispatchStream[T any](
	ctx context.Context,
	c *Client,
	method, path string,
	v any,
	onFrame func([]T),
	onComplete func(),
) error {
	defer func() {
		if onComplete != nil {
			onComplete()
		}
	}()

	payload, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, payload, "text/event-stream")
	if err != nil {
		return err
	}

	log := c.log.With("path", path)

	h, err := c.transport.Issue(req)
	if err != nil {
		if ctx.Err() != nil {
			log.Infow("stream cancelled before response")
			return nil
		}
		log.Errorw("request failed", "error", err)
		return &TransportError{Path: path, Err: err}
	}

	s := &streamSession[T]{log: log}
	for {
		if ctx.Err() != nil {
			log.Infow("stream cancelled", "frames", s.decoded)
			return nil
		}

		done := h.Done()
		batch, finished := s.poll(h.Buffer(), done)
		if onFrame != nil {
			onFrame(batch)
		}
		if finished {
			log.Debugw("stream finished", "frames", s.decoded)
			return nil
		}

		if done {
			if err := h.Err(); err != nil && ctx.Err() == nil {
				log.Errorw("stream interrupted", "error", err)
				return &TransportError{Path: path, Err: err}
			}
			if !statusOK(h.Status()) && s.decoded == 0 {
				log.Errorw("stream failed", "status", h.Status())
				return newStatusError(path, h.Status(), h.Buffer())
			}
			log.Debugw("stream ended without sentinel", "frames", s.decoded)
			return nil
		}

		select {
		case <-h.Progress():
		case <-ctx.Done():
		}
	}
}
