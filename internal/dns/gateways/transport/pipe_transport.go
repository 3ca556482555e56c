package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/haukened/nodar/internal/dns/common/log"
	"github.com/haukened/nodar/internal/dns/domain"
	"github.com/haukened/nodar/internal/dns/gateways/wire"
	"github.com/haukened/nodar/internal/dns/services/resolver"
)

// PipeTransport speaks the PowerDNS pipe backend protocol over a reader and
// writer pair, normally the process's stdin and stdout. Every line written
// starts with a tag the host demultiplexes on; diagnostics go to the logger.
type PipeTransport struct {
	in     *bufio.Reader
	out    *bufio.Writer
	codec  wire.PipeCodec
	banner string
	logger log.Logger

	mu      sync.Mutex
	running bool
	state   State
}

// NewPipeTransport creates a transport reading queries from r and writing
// replies to w. banner is sent back in the handshake acknowledgement.
func NewPipeTransport(r io.Reader, w io.Writer, codec wire.PipeCodec, banner string, logger log.Logger) *PipeTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &PipeTransport{
		in:     bufio.NewReader(r),
		out:    bufio.NewWriter(w),
		codec:  codec,
		banner: banner,
		logger: logger,
		state:  StateAwaitingHandshake,
	}
}

// State returns the current session state.
func (t *PipeTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *PipeTransport) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Serve performs the handshake and then answers query lines via handler until
// the input ends (nil), ctx is cancelled (ctx.Err()) or a reply cannot be
// written. Lines are handled strictly in order; one query is fully answered
// and flushed before the next is read.
func (t *PipeTransport) Serve(ctx context.Context, handler resolver.QueryHandler) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyServing
	}
	t.running = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running = false
		t.state = StateTerminated
		t.mu.Unlock()
	}()

	ok, err := t.handshake(ctx)
	if err != nil || !ok {
		return err
	}

	t.setState(StateServing)
	t.logger.Info(map[string]any{"transport": "pipe", "banner": t.banner}, "pipe transport serving")

	for {
		if err := ctx.Err(); err != nil {
			t.logger.Debug(nil, "pipe transport stopping due to context cancellation")
			return err
		}

		line, eof, err := t.readLine()
		if err != nil {
			return err
		}
		if line == "" && eof {
			t.logger.Info(nil, "end of input, pipe transport stopping")
			return nil
		}

		if err := t.answer(ctx, handler, line); err != nil {
			return err
		}
		if eof {
			t.logger.Info(nil, "end of input, pipe transport stopping")
			return nil
		}
	}
}

// handshake waits for HELO. Any other line is refused with FAIL and the
// transport keeps waiting. It reports false when input ends first.
func (t *PipeTransport) handshake(ctx context.Context) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		line, eof, err := t.readLine()
		if err != nil {
			return false, err
		}

		if hello, ok := t.codec.DecodeHello(line); ok {
			t.logger.Debug(map[string]any{"abi_version": hello.ABIVersion}, "handshake accepted")
			return true, t.write(t.codec.EncodeOK(t.banner))
		}

		if eof && line == "" {
			t.logger.Warn(nil, "end of input before handshake")
			return false, nil
		}

		t.logger.Warn(map[string]any{"line": strings.TrimSpace(line)}, "unexpected handshake line")
		if err := t.write(t.codec.EncodeFail()); err != nil {
			return false, err
		}
		if eof {
			return false, nil
		}
	}
}

// answer handles one query line and always terminates the reply with END.
func (t *PipeTransport) answer(ctx context.Context, handler resolver.QueryHandler, raw string) error {
	line := strings.TrimSpace(raw)
	t.out.WriteString(t.codec.EncodeLog("INPUT: " + line))

	query, err := t.codec.DecodeQuery(line)
	if err != nil {
		t.logger.Warn(map[string]any{"line": line}, "failed to decode query")
		t.out.WriteString(t.codec.EncodeLog(err.Error()))
		t.out.WriteString(t.codec.EncodeEnd())
		return t.flush()
	}

	t.logger.Debug(map[string]any{
		"kind":      string(query.Kind),
		"name":      query.Name,
		"type":      query.Type.String(),
		"id":        query.ID,
		"remote_ip": query.RemoteIP,
	}, "received query")

	resp := handler.HandleQuery(ctx, query)
	t.writeResponse(query, resp)
	t.out.WriteString(t.codec.EncodeEnd())
	return t.flush()
}

func (t *PipeTransport) writeResponse(query domain.Query, resp domain.Response) {
	for _, a := range resp.Answers {
		if !a.OK() {
			t.logger.Warn(map[string]any{
				"name":  query.Name,
				"type":  query.Type.String(),
				"error": a.Err.Error(),
			}, "sub-answer failed")
			t.out.WriteString(t.codec.EncodeLog(a.Err.Error()))
			continue
		}
		t.out.WriteString(t.codec.EncodeLog("REPLY: " + a.Record.Summary()))
		t.out.WriteString(t.codec.EncodeData(a.Record))
	}
}

// readLine returns the next line with its terminator. eof is set when the
// input ended; line may still hold an unterminated final line.
func (t *PipeTransport) readLine() (line string, eof bool, err error) {
	line, err = t.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		return line, true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read from host: %w", err)
	}
	return line, false, nil
}

func (t *PipeTransport) write(s string) error {
	t.out.WriteString(s)
	return t.flush()
}

func (t *PipeTransport) flush() error {
	if err := t.out.Flush(); err != nil {
		t.logger.Error(map[string]any{"error": err.Error()}, "failed to write to host")
		return fmt.Errorf("failed to write to host: %w", err)
	}
	return nil
}
