package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vizify/internal/history"
	"vizify/internal/interpret"
	"vizify/internal/spec"
)

const (
	visualizeWSWriteWait = 10 * time.Second
	visualizeWSPongWait  = 60 * time.Second
	visualizeWSPingEvery = (visualizeWSPongWait * 9) / 10
)

var visualizeWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type visualizeWSInbound struct {
	Type        string `json:"type,omitempty"`
	Command     string `json:"command,omitempty"`
	UserContext string `json:"user_context,omitempty"`
	Tier        string `json:"tier,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

type visualizeWSOutbound struct {
	Type    string                  `json:"type"`
	Stage   string                  `json:"stage,omitempty"`
	Detail  string                  `json:"detail,omitempty"`
	Spec    *spec.VisualizationSpec `json:"spec,omitempty"`
	Source  spec.Source             `json:"source,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// VisualizeStream interprets commands over a websocket, pushing a stage
// event as each source in the chain is tried and the result when one
// wins. One connection can carry any number of commands.
func (h *Handler) VisualizeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := visualizeWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(visualizeWSPongWait)); err != nil {
		log.Printf("visualize ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(visualizeWSPongWait))
	})

	writeCh := make(chan visualizeWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(visualizeWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(visualizeWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(visualizeWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var inflight sync.WaitGroup
	for {
		var in visualizeWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			inflight.Wait()
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "", "visualize":
			inflight.Add(1)
			go func(in visualizeWSInbound) {
				defer inflight.Done()
				h.streamOne(ctx, in, writeCh)
			}(in)
		case "ping":
			pushVisualizeWS(writeCh, visualizeWSOutbound{Type: "pong"})
		default:
			pushVisualizeWS(writeCh, visualizeWSOutbound{
				Type:    "error",
				Message: "unsupported type: " + in.Type,
			})
		}
	}
}

// streamOne runs the chain for a single command. The read loop keeps
// going while this runs, so pings and further commands stay live.
func (h *Handler) streamOne(ctx context.Context, in visualizeWSInbound, writeCh chan visualizeWSOutbound) {
	cmd := spec.Command{Text: in.Command, Context: in.UserContext, Tier: in.Tier}
	if err := cmd.Validate(); err != nil {
		pushVisualizeWS(writeCh, visualizeWSOutbound{Type: "error", Message: err.Error()})
		return
	}

	hookCtx := interpret.WithStageHook(ctx, func(stage interpret.Stage, detail string) {
		pushVisualizeWS(writeCh, visualizeWSOutbound{
			Type:   "stage",
			Stage:  string(stage),
			Detail: detail,
		})
	})
	res := h.interp.InterpretWithSource(hookCtx, cmd)
	if msg, bad := aiUnavailable(res); bad {
		pushVisualizeWS(writeCh, visualizeWSOutbound{Type: "error", Source: res.Source, Message: msg})
		return
	}
	history.Log(ctx, h.store, strings.TrimSpace(in.SessionID), cmd, res)
	pushVisualizeWS(writeCh, visualizeWSOutbound{
		Type:    "result",
		Spec:    res.Spec,
		Source:  res.Source,
		Message: res.Err,
	})
}

// pushVisualizeWS never blocks: when the buffer is full the oldest event
// is dropped so fresh progress wins over stale progress.
func pushVisualizeWS(writeCh chan visualizeWSOutbound, out visualizeWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
