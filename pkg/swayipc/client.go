package swayipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// Client is one connection to the compositor. A connection is used either
// for request/reply queries or, after Subscribe, for reading events;
// adapters hold one of each. Methods honor the context deadline; to abort
// a blocked read, close the client from another goroutine.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the compositor socket at path. An empty path falls back
// to environment discovery.
func Dial(ctx context.Context, path string) (*Client, error) {
	if path == "" {
		var err error
		if path, err = SocketPath(); err != nil {
			return nil, err
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial compositor: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close terminates the connection and unblocks any pending read.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Workspaces queries the current workspace list.
func (c *Client) Workspaces(ctx context.Context) ([]WorkspaceInfo, error) {
	var out []WorkspaceInfo
	if err := c.query(ctx, msgGetWorkspaces, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tree queries the full container tree.
func (c *Client) Tree(ctx context.Context) (*Node, error) {
	var root Node
	if err := c.query(ctx, msgGetTree, nil, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Inputs queries the input device list.
func (c *Client) Inputs(ctx context.Context) ([]InputDevice, error) {
	var out []InputDevice
	if err := c.query(ctx, msgGetInputs, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RunCommand executes a compositor command string and returns an error if
// any chained command failed.
func (c *Client) RunCommand(ctx context.Context, cmd string) error {
	var results []runResult
	if err := c.query(ctx, msgRunCommand, []byte(cmd), &results); err != nil {
		return err
	}
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("command %q rejected: %s", cmd, r.Error)
		}
	}
	return nil
}

// Subscribe registers for the named event types. After a successful
// subscription the connection should only be read via NextEvent: replies
// to further queries would interleave with event frames.
func (c *Client) Subscribe(ctx context.Context, events ...string) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	var res subscribeResult
	if err := c.query(ctx, msgSubscribe, payload, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("subscription to %v refused", events)
	}
	return nil
}

// NextEvent blocks until the next event frame arrives. Stray reply frames
// are skipped.
func (c *Client) NextEvent(ctx context.Context) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.applyDeadline(ctx); err != nil {
		return Event{}, err
	}
	for {
		msgType, payload, err := readFrame(c.conn)
		if err != nil {
			return Event{}, err
		}
		if isEvent(msgType) {
			return Event{Type: msgType, Payload: payload}, nil
		}
	}
}

// query performs one request/reply roundtrip, decoding the reply into out.
// Event frames arriving in between are discarded, so queries stay usable
// on a connection that was never subscribed even if the compositor pushes
// unsolicited frames.
func (c *Client) query(ctx context.Context, msgType uint32, payload []byte, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyDeadline(ctx); err != nil {
		return err
	}
	if err := writeFrame(c.conn, msgType, payload); err != nil {
		return err
	}
	for {
		replyType, reply, err := readFrame(c.conn)
		if err != nil {
			return err
		}
		if isEvent(replyType) {
			continue
		}
		if replyType != msgType {
			return fmt.Errorf("reply type %d for request %d", replyType, msgType)
		}
		if err := json.Unmarshal(reply, out); err != nil {
			return fmt.Errorf("decode reply %d: %w", msgType, err)
		}
		return nil
	}
}

// applyDeadline maps the context deadline onto the connection and fails
// fast on an already-cancelled context.
func (c *Client) applyDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(deadline)
	}
	return c.conn.SetDeadline(time.Time{})
}
