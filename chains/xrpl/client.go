package xrpl

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	readLimit  = 1 << 20
	streamSize = 256
)

// ErrClientClosed is returned by requests issued on a closed connection.
var ErrClientClosed = errors.New("xrpl client is closed")

// Request is a rippled websocket command. The id field is set by the client.
type Request map[string]any

// Client is a rippled websocket connection. Responses are matched to requests
// by id and every other message is delivered on Stream.
type Client struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan gjson.Result
	err     error

	stream chan gjson.Result
	done   chan struct{}
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", url)
	}
	conn.SetReadLimit(readLimit)

	readCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		cancel:  cancel,
		pending: make(map[uint64]chan gjson.Result),
		stream:  make(chan gjson.Result, streamSize),
		done:    make(chan struct{}),
	}
	go c.readLoop(readCtx)
	return c, nil
}

// Stream delivers subscription messages. It is closed when the connection ends.
func (c *Client) Stream() <-chan gjson.Result {
	return c.stream
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	c.cancel()
	<-c.done
	return err
}

// Request sends req and waits for its response. It returns the `result` object
// of a successful response.
func (c *Client) Request(ctx context.Context, req Request) (gjson.Result, error) {
	id := c.nextID.Add(1)
	ch := make(chan gjson.Result, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return gjson.Result{}, err
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg := make(Request, len(req)+1)
	for k, v := range req {
		msg[k] = v
	}
	msg["id"] = id
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return gjson.Result{}, errors.Wrapf(err, "failed to send %v", req["command"])
	}

	select {
	case resp := <-ch:
		if status := resp.Get("status").String(); status != "success" {
			return resp, errors.Newf("%v failed: %s: %s", req["command"], resp.Get("error").String(), resp.Get("error_message").String())
		}
		return resp.Get("result"), nil
	case <-c.done:
		return gjson.Result{}, c.Err()
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	}
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)
	defer close(c.stream)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			c.err = errors.Mark(errors.Wrap(err, "failed to read socket"), ErrClientClosed)
			c.mu.Unlock()
			return
		}
		if !gjson.ValidBytes(data) {
			continue
		}
		msg := gjson.ParseBytes(data)

		if msg.Get("type").String() == "response" {
			id := msg.Get("id").Uint()
			c.mu.Lock()
			ch, ok := c.pending[id]
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		select {
		case c.stream <- msg:
		case <-ctx.Done():
			c.mu.Lock()
			c.err = ErrClientClosed
			c.mu.Unlock()
			return
		}
	}
}
