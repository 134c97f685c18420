// Package bridge implements the Event Bridge (spec.md §4.7): a thin
// translator between a request/response transport and the Control API,
// plus a named progress event channel. The teacher's collaborator (a
// Tauri desktop shell) is replaced here with newline-delimited
// JSON-RPC over stdin/stdout, since this repository is a daemon/
// library rather than a desktop application (SPEC_FULL.md §6).
package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ColonelBlimp/cwdecoder/internal/control"
)

// Request is one JSON-RPC-shaped line read from the transport.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is one reply line written to the transport.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Result interface{}     `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Event is an unsolicited line carrying a named channel's payload,
// currently only "load_progress" (spec.md §4.3, §4.7).
type Event struct {
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload"`
}

// Bridge serializes writes to out so progress events and RPC
// responses never interleave mid-line.
type Bridge struct {
	control *control.Control
	log     *log.Logger

	writeMu sync.Mutex
	out     *bufio.Writer
}

// New constructs a Bridge over the given control handle, reading
// newline-delimited requests from in and writing responses/events to
// out.
func New(c *control.Control, out io.Writer, logger *log.Logger) *Bridge {
	return &Bridge{control: c, log: logger, out: bufio.NewWriter(out)}
}

// Serve reads one JSON-RPC request per line from in until EOF or a
// read error, dispatching each synchronously and writing its response
// before reading the next line. LoadInstrument progress events are
// written as they are produced by the dispatch itself.
func (b *Bridge) Serve(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			b.writeResponse(Response{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		result, err := b.dispatch(req)
		resp := Response{ID: req.ID}
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Result = result
		}
		b.writeResponse(resp)
	}
	return scanner.Err()
}

// EmitProgress satisfies control.LoadInstrument's onProgress callback
// shape, wrapping each event in the load_progress channel envelope.
func (b *Bridge) EmitProgress(p control.Progress) {
	b.writeEvent(Event{Channel: "load_progress", Payload: p})
}

func (b *Bridge) writeResponse(r Response) {
	b.writeLine(r)
}

func (b *Bridge) writeEvent(e Event) {
	b.writeLine(e)
}

func (b *Bridge) writeLine(v interface{}) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error("marshal bridge line", "err", err)
		return
	}
	if _, err := b.out.Write(data); err != nil {
		b.log.Error("write bridge line", "err", err)
		return
	}
	if err := b.out.WriteByte('\n'); err != nil {
		b.log.Error("write bridge line terminator", "err", err)
		return
	}
	if err := b.out.Flush(); err != nil {
		b.log.Error("flush bridge output", "err", err)
	}
}
