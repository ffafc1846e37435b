package remote

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/stylize"
)

// Client is a stylize.Model served by a remote Handler
// Calls are serialised; the pipeline never has more than one in flight anyway
type Client struct {
	url    string
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// NewClient creates a client for a ws:// or wss:// URL; nothing is dialled until Load
func NewClient(url string) *Client {
	return &Client{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Load connects and asks the host to load its model
// Any failure is reported as stylize.ErrModelUnavailable so the caller may retry
func (c *Client) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return errors.Wrapf(stylize.ErrModelUnavailable, "connect %s: %v", c.url, err)
	}
	resp, err := c.roundTrip(ctx, Message{Type: MessageTypeLoad})
	if err != nil {
		c.reset()
		return errors.Wrapf(stylize.ErrModelUnavailable, "load: %v", err)
	}
	switch resp.Type {
	case MessageTypeReady:
	case MessageTypeError:
		return errors.Wrapf(stylize.ErrModelUnavailable, "remote load: %s", resp.Error)
	default:
		c.reset()
		return errors.Wrapf(stylize.ErrModelUnavailable, "unexpected %q reply to load", resp.Type)
	}
	return nil
}

// Stylize sends one frame and waits for the styled frame
// A broken connection is dropped and redialled on the next call
func (c *Client) Stylize(ctx context.Context, frame *render.Frame, p stylize.Params) (*render.Frame, error) {
	img, err := encodeFrame(frame)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return nil, errors.Wrap(err, "reconnect")
	}

	resp, err := c.roundTrip(ctx, Message{
		Type:   MessageTypeStylize,
		Params: toWire(p),
		Image:  img,
	})
	if err != nil {
		c.reset()
		return nil, err
	}
	switch resp.Type {
	case MessageTypeResult:
		return decodeFrame(resp.Image)
	case MessageTypeError:
		return nil, errors.Errorf("remote stylize: %s", resp.Error)
	default:
		return nil, errors.Errorf("unexpected %q reply to stylize", resp.Type)
	}
}

// Close hangs up
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.reset()
	return nil
}

func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// roundTrip writes req and reads until the reply carrying the same id
// Only transport failures are errors; error replies are returned as messages.
// ctx cancellation unblocks the read by expiring the deadline.
func (c *Client) roundTrip(ctx context.Context, req Message) (Message, error) {
	c.nextID++
	req.ID = c.nextID
	conn := c.conn

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return Message{}, errors.Wrap(err, "write request")
	}

	for {
		var resp Message
		if err := conn.ReadJSON(&resp); err != nil {
			if ctx.Err() != nil {
				return Message{}, ctx.Err()
			}
			return Message{}, errors.Wrap(err, "read reply")
		}
		if resp.ID != req.ID {
			// Late reply to an abandoned request
			continue
		}
		return resp, nil
	}
}
