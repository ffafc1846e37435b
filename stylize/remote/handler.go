package remote

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/diffused-rays/stylize"
)

const maxMessageSize = 32 << 20

// Handler serves a stylize.Model to remote clients
// Connections share the model; each connection handles its requests in order
type Handler struct {
	res      *stylize.Resource
	upgrader websocket.Upgrader
	served   atomic.Int64
}

// NewHandler wraps a model resource; the model loads on the first client load request
func NewHandler(res *stylize.Resource) *Handler {
	return &Handler{
		res: res,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 64 << 10,
			// Local tool; any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Served returns the number of frames stylized across all connections
func (h *Handler) Served() int64 {
	return h.served.Load()
}

// ServeHTTP upgrades the request and runs the read loop until the client leaves
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("remote: upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	log.Printf("remote: client connected from %s", conn.RemoteAddr())
	ctx := r.Context()

	for {
		var req Message
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("remote: read error: %v", err)
			}
			return
		}

		resp := h.handle(ctx, req)
		resp.ID = req.ID
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("remote: write error: %v", err)
			return
		}
	}
}

func (h *Handler) handle(ctx context.Context, req Message) Message {
	switch req.Type {
	case MessageTypeLoad:
		if _, err := h.res.Acquire(ctx); err != nil {
			return errorMessage(err)
		}
		return Message{Type: MessageTypeReady}

	case MessageTypeStylize:
		model, err := h.res.Acquire(ctx)
		if err != nil {
			return errorMessage(err)
		}
		frame, err := decodeFrame(req.Image)
		if err != nil {
			return errorMessage(err)
		}
		out, err := model.Stylize(ctx, frame, fromWire(req.Params))
		if err != nil {
			return errorMessage(err)
		}
		if out == nil {
			return Message{Type: MessageTypeError, Error: "model returned no frame"}
		}
		img, err := encodeFrame(out)
		if err != nil {
			return errorMessage(err)
		}
		h.served.Add(1)
		return Message{Type: MessageTypeResult, Image: img}

	default:
		return Message{Type: MessageTypeError, Error: "unknown message type " + string(req.Type)}
	}
}

func errorMessage(err error) Message {
	return Message{Type: MessageTypeError, Error: err.Error()}
}
