package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
	"warehouse-route-optimizer/internal/api/dto"
	"warehouse-route-optimizer/internal/services"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const streamWriteWait = 10 * time.Second

// Stream handles GET /plans/stream.
//
// The client sends one PlanRequest frame; the server answers with "report"
// frames while the search runs and a final "result" or "error" frame.
// Closing the connection cancels the search.
func (h *PlanHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var req dto.PlanRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeFrame(conn, dto.StreamMessage{Type: "error", Error: "invalid json body"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Any read error, including a close frame, means the client is gone.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	every := h.Defaults.ReportEvery
	if every < 1 {
		every = 1
	}

	onReport := func(run int, rep services.Report) {
		if rep.Generation%every != 0 {
			return
		}
		writeFrame(conn, dto.StreamMessage{
			Type:       "report",
			Run:        run + 1,
			Generation: rep.Generation,
			Best:       rep.Best,
			Mean:       rep.Mean,
			StdDev:     rep.StdDev,
			ElapsedMs:  rep.Elapsed.Milliseconds(),
		})
	}

	res, err := h.run(ctx, req, onReport)
	if err != nil {
		var reqErr *requestError
		msg := "internal server error"
		switch {
		case errors.As(err, &reqErr):
			msg = reqErr.msg
		case errors.Is(err, context.Canceled):
			return
		default:
			log.Printf("stream plan routes failed: %v", err)
		}
		writeFrame(conn, dto.StreamMessage{Type: "error", Error: msg})
		return
	}

	writeFrame(conn, dto.StreamMessage{Type: "result", Plan: res})
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteWait),
	)
}

func writeFrame(conn *websocket.Conn, msg dto.StreamMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("stream write failed: type=%s err=%v", msg.Type, err)
	}
}
