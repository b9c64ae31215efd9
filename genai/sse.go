// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genai

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/tidwall/gjson"
)

const ssePrefix = "data: "

// Frame terminators, in the order they are tried. Each is matched as a
// prefix of the bytes that follow the payload line.
var sseTerminators = [][]byte{
	[]byte("\n\n"),
	[]byte("\r\r"),
	[]byte("\r\n\r\n"),
}

const maxTerminatorLen = 4

// frameDecoder splits a server-sent-events byte stream into JSON frames.
//
// A frame is "data: " followed by the payload up to the first CR or LF,
// followed by one of the terminators. The payload must be valid JSON. The
// sequence of frames returned does not depend on how the stream is split
// into reads.
//
// A frameDecoder is not safe for concurrent use.
type frameDecoder struct {
	r     io.ReadCloser
	buf   []byte
	chunk []byte
	eof   bool
	err   error

	closeOnce sync.Once
	closeErr  error
}

func newFrameDecoder(r io.ReadCloser) *frameDecoder {
	return &frameDecoder{r: r, chunk: make([]byte, 4096)}
}

// Next returns the payload of the next frame. It returns io.EOF after the
// last frame of a well-formed stream. Any other error is fatal, and is
// returned again by every later call. The underlying reader is closed as
// soon as Next returns an error.
func (d *frameDecoder) Next() (json.RawMessage, error) {
	if d.err != nil {
		return nil, d.err
	}
	for {
		payload, n, err := matchFrame(d.buf)
		if err != nil {
			return nil, d.fail(err)
		}
		if n > 0 {
			d.buf = d.buf[n:]
			if !gjson.ValidBytes(payload) {
				return nil, d.fail(&ProtocolError{Reason: "frame is not valid JSON", Frame: string(payload)})
			}
			return json.RawMessage(bytes.Clone(payload)), nil
		}
		if d.eof {
			if rest := bytes.TrimSpace(d.buf); len(rest) > 0 {
				return nil, d.fail(&ProtocolError{Reason: "incomplete frame at end of stream", Frame: string(rest)})
			}
			return nil, d.fail(io.EOF)
		}
		m, err := d.r.Read(d.chunk)
		d.buf = append(d.buf, d.chunk[:m]...)
		if err == io.EOF {
			d.eof = true
		} else if err != nil {
			return nil, d.fail(err)
		}
	}
}

// Close releases the underlying reader. It is safe to call more than once,
// and after Next has failed.
func (d *frameDecoder) Close() error {
	if d.err == nil {
		d.err = io.EOF
	}
	d.closeOnce.Do(func() {
		d.closeErr = d.r.Close()
	})
	return d.closeErr
}

func (d *frameDecoder) fail(err error) error {
	d.err = err
	d.Close()
	return err
}

// matchFrame looks for a complete frame at the start of buf. It returns the
// payload and the number of bytes the frame occupies, or n == 0 if more data
// is needed. It returns an error if buf can never begin a valid frame.
func matchFrame(buf []byte) (payload []byte, n int, err error) {
	if len(bytes.TrimSpace(buf)) == 0 {
		// Trailing whitespace is allowed at the end of the stream.
		return nil, 0, nil
	}
	if len(buf) < len(ssePrefix) {
		if !bytes.HasPrefix([]byte(ssePrefix), buf) {
			return nil, 0, malformedFrame(buf)
		}
		return nil, 0, nil
	}
	if !bytes.HasPrefix(buf, []byte(ssePrefix)) {
		return nil, 0, malformedFrame(buf)
	}
	rest := buf[len(ssePrefix):]
	end := bytes.IndexAny(rest, "\r\n")
	if end < 0 {
		return nil, 0, nil
	}
	tail := rest[end:]
	for _, term := range sseTerminators {
		if bytes.HasPrefix(tail, term) {
			return rest[:end], len(ssePrefix) + end + len(term), nil
		}
	}
	if len(tail) >= maxTerminatorLen {
		return nil, 0, malformedFrame(buf[:len(ssePrefix)+end+maxTerminatorLen])
	}
	return nil, 0, nil
}

func malformedFrame(b []byte) error {
	return &ProtocolError{Reason: "malformed frame", Frame: string(b)}
}
