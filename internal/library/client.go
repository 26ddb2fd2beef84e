package library

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Client is a subprocess-backed Library (spec §6.3 "a library is a
// child process"). Requests and responses are length-prefixed frames
// over the child's stdin/stdout; calls are serialized one at a time
// per spec §5 "each library call serializes request/response through
// that library's handle" — there is exactly one in-flight RunFunction
// call at a time, so no request/response correlation id needs to ride
// on the wire itself.
type Client struct {
	name        string
	major, minor int
	description string
	fns         []FnSig

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu sync.Mutex
}

// Dial starts the library subprocess at path and performs the
// registration handshake (spec §6.3 "Registration exchanges: library
// name, version tuple (major, minor), description string, and a list
// of (fn_name, List<input-VType>, output-VType)"). ctx governs the
// subprocess's entire lifetime, not just the handshake; use
// DialTimeout to additionally bound how long registration itself may
// take.
func Dial(ctx context.Context, path string, args ...string) (*Client, error) {
	return DialTimeout(ctx, 0, path, args...)
}

// DialTimeout is Dial with a registration deadline (SPEC_FULL.md §1
// "library_dial_timeout"): a misbehaving library that starts but never
// completes the handshake would otherwise hang the caller forever. A
// zero timeout means no deadline. The deadline applies only to the
// handshake; ctx still governs the subprocess's lifetime afterward.
func DialTimeout(ctx context.Context, timeout time.Duration, path string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("library: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("library: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("library: start %s: %w", path, err)
	}

	c := &Client{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if timeout <= 0 {
		if err := c.readRegistration(); err != nil {
			_ = cmd.Process.Kill()
			return nil, fmt.Errorf("library: registration with %s: %w", path, err)
		}
		return c, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.readRegistration() }()
	select {
	case err := <-done:
		if err != nil {
			_ = cmd.Process.Kill()
			return nil, fmt.Errorf("library: registration with %s: %w", path, err)
		}
		return c, nil
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("library: registration with %s: timed out after %s", path, timeout)
	}
}

func (c *Client) readRegistration() error {
	name, err := readBytes(c.stdout)
	if err != nil {
		return err
	}
	c.name = string(name)

	major, err := readU64(c.stdout)
	if err != nil {
		return err
	}
	minor, err := readU64(c.stdout)
	if err != nil {
		return err
	}
	c.major, c.minor = int(major), int(minor)

	desc, err := readBytes(c.stdout)
	if err != nil {
		return err
	}
	c.description = string(desc)

	n, err := readU64(c.stdout)
	if err != nil {
		return err
	}
	c.fns = make([]FnSig, n)
	for i := range c.fns {
		fnName, err := readBytes(c.stdout)
		if err != nil {
			return err
		}
		argCount, err := readU64(c.stdout)
		if err != nil {
			return err
		}
		ins := make([]vtype.Type, argCount)
		for j := range ins {
			ins[j], err = DecodeType(c.stdout)
			if err != nil {
				return err
			}
		}
		out, err := DecodeType(c.stdout)
		if err != nil {
			return err
		}
		c.fns[i] = FnSig{Name: string(fnName), Ins: ins, Out: out}
	}
	return nil
}

func (c *Client) Name() string                { return c.name }
func (c *Client) Version() (int, int)         { return c.major, c.minor }
func (c *Client) Description() string         { return c.description }
func (c *Client) RegisteredFns() []FnSig       { return c.fns }

// RunFn sends a RunFunction{fn_id, args} request and blocks for the
// {result} response (spec §6.3 "Invocation message").
func (c *Client) RunFn(ctx context.Context, fnID int, args []*value.Cell) (*value.Cell, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reqID := uuid.New() // diagnostics only; the wire protocol has no room for it (spec §6.3)
	if err := writeU64(c.stdin, uint64(fnID)); err != nil {
		return nil, fmt.Errorf("library: write fn_id (req %s): %w", reqID, err)
	}
	if err := writeU64(c.stdin, uint64(len(args))); err != nil {
		return nil, fmt.Errorf("library: write argc (req %s): %w", reqID, err)
	}
	for _, a := range args {
		if err := EncodeValue(c.stdin, a); err != nil {
			return nil, fmt.Errorf("library: encode arg (req %s): %w", reqID, err)
		}
	}
	result, err := DecodeValue(c.stdout)
	if err != nil {
		return nil, fmt.Errorf("library: decode result (req %s): %w", reqID, err)
	}
	return result, nil
}

// Close closes the library subprocess's stdin and waits for it to exit.
func (c *Client) Close() error {
	_ = c.stdin.Close()
	return c.cmd.Wait()
}
