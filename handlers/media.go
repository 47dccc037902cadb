package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cafedesk/services/realtime"
	"cafedesk/services/speech"
)

// Twilio media-stream event shapes; only the fields this service reads.
type mediaMessage struct {
	Event string      `json:"event"`
	Start *startFrame `json:"start,omitempty"`
	Media *mediaFrame `json:"media,omitempty"`
}

type startFrame struct {
	StreamSID string `json:"streamSid"`
	CallSID   string `json:"callSid"`
}

type mediaFrame struct {
	Payload string `json:"payload"` // base64 μ-law audio
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MediaHandler owns the realtime-mode websocket endpoint. Each connection
// becomes one session; the read loop here is the single goroutine that
// feeds session events.
type MediaHandler struct {
	Registry    *realtime.Registry
	Transcriber speech.Transcriber
	Speaker     realtime.Speaker
	Injector    realtime.Injector
	Replier     *realtime.Replier
	Greeting    string
	Logger      *zap.Logger
}

// Stream upgrades the media websocket and pumps provider events into one
// session until the stream stops or the socket closes.
func (h *MediaHandler) Stream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("media websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = ws.Close() }()

	sess := &realtime.Session{
		Transcriber: h.Transcriber,
		Speaker:     h.Speaker,
		Injector:    h.Injector,
		Replier:     h.Replier,
		Registry:    h.Registry,
		Greeting:    h.Greeting,
		Logger:      h.Logger,
	}
	defer sess.Close()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.Debug("media websocket read ended", zap.Error(err))
			}
			return
		}

		var msg mediaMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "start":
			if msg.Start != nil {
				h.Logger.Info("media stream started",
					zap.String("callSid", msg.Start.CallSID),
					zap.String("streamSid", msg.Start.StreamSID),
				)
				sess.Start(c.Request.Context(), msg.Start.CallSID, msg.Start.StreamSID)
			}
		case "media":
			if msg.Media != nil {
				sess.HandleMedia(msg.Media.Payload)
			}
		case "stop":
			h.Logger.Info("media stream stopped")
			return
		}
	}
}
