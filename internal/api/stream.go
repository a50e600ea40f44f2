// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// readChunkSize is the size of each raw read from the response body.
const readChunkSize = 4096

// StreamCallback receives each parsed event as it arrives.
type StreamCallback func(event StreamEvent)

// StreamReader reads a server-sent event stream line by line. Network reads
// return arbitrary chunks, so a line may arrive split across several reads;
// the trailing partial line is carried over and completed by the next chunk.
type StreamReader struct {
	reader io.Reader
	// carry holds the trailing partial line from the previous read.
	carry []byte
	// pending holds complete lines not yet handed to the caller.
	pending [][]byte
	buf     []byte
	eof     bool

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	reasoning strings.Builder
	answer    strings.Builder

	inReasoning bool
	firstToken  bool
	startTime   time.Time
	usage       *CombinedUsage
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:      r,
		buf:         make([]byte, readChunkSize),
		inReasoning: true,
		firstToken:  true,
		startTime:   time.Now(),
	}
}

// Process reads the stream and calls the callback for each event.
// Blocks until the stream is complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			event, err := s.readEvent()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if event != nil {
				s.accumulate(event)
				callback(*event)
				if event.Type == EventDone {
					return nil
				}
			}
		}
	}
}

// readEvent reads lines until one parses as an event. Returns io.EOF when
// the stream is exhausted.
func (s *StreamReader) readEvent() (*StreamEvent, error) {
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}

		// Non-data lines (event: headers, blanks, malformed payloads)
		// are skipped; the stream stays in sync on the next data line.
		if event := ParseLine(line); event != nil {
			return event, nil
		}
	}
}

// readLine returns the next complete line, reading more chunks from the
// underlying reader as needed. The final unterminated line is returned once
// at EOF.
func (s *StreamReader) readLine() ([]byte, error) {
	for {
		if len(s.pending) > 0 {
			line := s.pending[0]
			s.pending = s.pending[1:]
			return line, nil
		}

		if s.eof {
			if len(s.carry) > 0 {
				line := s.carry
				s.carry = nil
				return line, nil
			}
			return nil, io.EOF
		}

		n, err := s.reader.Read(s.buf)
		if n > 0 {
			s.split(s.buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				s.eof = true
				continue
			}
			return nil, err
		}
	}
}

// split appends a raw chunk to the carry buffer and extracts every complete
// line from it, leaving any trailing partial line in the carry.
func (s *StreamReader) split(chunk []byte) {
	s.carry = append(s.carry, chunk...)
	for {
		idx := bytes.IndexByte(s.carry, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, s.carry[:idx])
		s.pending = append(s.pending, line)
		s.carry = s.carry[idx+1:]
	}
}

// accumulate folds an event's content into the reasoning and answer buffers.
// Sentinel blocks flip the phase and are never written to either buffer.
func (s *StreamReader) accumulate(event *StreamEvent) {
	switch event.Type {
	case EventContent:
		for _, block := range event.Content {
			if block.IsOpenSentinel() {
				s.inReasoning = true
				continue
			}
			if block.IsCloseSentinel() {
				s.inReasoning = false
				continue
			}
			if block.Text == "" {
				continue
			}
			if s.firstToken {
				s.firstToken = false
			}
			if s.inReasoning {
				s.reasoning.WriteString(block.Text)
			} else {
				s.answer.WriteString(block.Text)
			}
		}
	case EventUsage:
		if event.Usage != nil {
			s.usage = event.Usage
		}
	}
}

// Reasoning returns the accumulated reasoning content.
func (s *StreamReader) Reasoning() string {
	return s.reasoning.String()
}

// Answer returns the accumulated answer content.
func (s *StreamReader) Answer() string {
	return s.answer.String()
}

// Usage returns the combined usage report, or nil if none arrived.
func (s *StreamReader) Usage() *CombinedUsage {
	return s.usage
}

// Elapsed returns the time since the reader was created.
func (s *StreamReader) Elapsed() time.Duration {
	return time.Since(s.startTime)
}
