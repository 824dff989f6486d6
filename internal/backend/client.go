// Package backend connects the view to the document process that owns the
// authoritative text. Outbound editing commands are fire-and-forget JSON-RPC
// notifications, never awaited, and the backend pushes line updates back as
// notifications of its own. The view never inspects command results; desyncs
// reconcile through the next pushed update.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"go.uber.org/zap"
)

// methodUpdate is the push notification carrying line content.
const methodUpdate = "update"

// UpdateFunc receives decoded line pushes. It is called on the RPC read
// goroutine; implementations must hand the data to the event loop rather
// than touch view state directly.
type UpdateFunc func(u Update)

// Options configures a Client.
type Options struct {
	// OnUpdate receives decoded line pushes. Required for a useful view.
	OnUpdate UpdateFunc

	// Log receives transport diagnostics. Defaults to a nop logger.
	Log *zap.Logger
}

// Client is the outbound half of the backend connection plus the push
// dispatcher. Commands are sent without waiting for replies.
type Client struct {
	rpc *jrpc2.Client
	log *zap.Logger
}

// Connect builds a client over an existing reader/writer pair, e.g. the
// pipes of a spawned backend process. Messages are newline-delimited JSON.
func Connect(r io.Reader, w io.WriteCloser, opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{log: log}
	c.rpc = jrpc2.NewClient(channel.Line(r, w), &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			c.dispatch(req, opts.OnUpdate)
		},
	})
	return c
}

// Spawn starts the backend binary and connects over its stdio.
func Spawn(ctx context.Context, path string, args []string, opts Options) (*Client, *exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("backend stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("backend stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start backend %s: %w", path, err)
	}
	return Connect(stdout, stdin, opts), cmd, nil
}

// SendCommand sends a named command to the backend and returns immediately.
// Transport errors are logged and dropped: the protocol has no reply to
// wait for, and a lost command surfaces as a missing update, not an error.
func (c *Client) SendCommand(name string, params any) {
	if err := c.rpc.Notify(context.Background(), name, params); err != nil {
		c.log.Warn("backend command failed",
			zap.String("method", name),
			zap.Error(err))
	}
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// dispatch routes an inbound notification. Unknown methods are logged at
// debug level and ignored.
func (c *Client) dispatch(req *jrpc2.Request, onUpdate UpdateFunc) {
	switch req.Method() {
	case methodUpdate:
		if onUpdate == nil {
			return
		}
		var raw json.RawMessage
		if req.HasParams() {
			if err := req.UnmarshalParams(&raw); err != nil {
				c.log.Error("malformed update push", zap.Error(err))
				return
			}
		}
		u, err := DecodeUpdate(raw)
		if err != nil {
			c.log.Error("malformed update push", zap.Error(err))
			return
		}
		onUpdate(u)
	default:
		c.log.Debug("unhandled backend notification",
			zap.String("method", req.Method()))
	}
}
