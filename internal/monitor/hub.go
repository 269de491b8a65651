// Package monitor serves a live preview of what the simulated strip
// latched, plus diagnostics, over websockets.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/strip"
)

// Report is the latch summary published with each frame.
type Report = strip.Report

const writeWait = 200 * time.Millisecond

type Hub struct {
	// Driver names the active frame channel in topology and health replies.
	Driver string

	mu          sync.RWMutex
	wmu         sync.Mutex // one writer per connection at a time
	length      int
	rgb         []byte
	frameID     uint64
	short       uint64
	amps        float64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	up          websocket.Upgrader
}

func New(length int) *Hub {
	return &Hub{
		length:      length,
		rgb:         make([]byte, 0, length*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Publish records a latched frame and pushes it, and any diagnostics it
// raises, to the connected clients. Its signature matches strip.OnLatch.
func (h *Hub) Publish(frame []model.ColorWord, r Report) {
	h.mu.Lock()
	h.rgb = h.rgb[:0]
	for _, c := range frame {
		h.rgb = c.Serialize(h.rgb)
	}
	h.frameID++
	h.amps = estimateCurrent(h.rgb)
	d := Inspect(h.length, r)
	if len(d) > 0 {
		h.short++
	}
	buf := append([]byte{}, h.rgb...)
	id := h.frameID
	h.mu.Unlock()

	h.broadcastFrame(id, buf)
	for _, x := range d {
		h.Push(x)
	}
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return withCORS(mux)
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.sendTopology(conn)
	go h.readUntilClosed(conn, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.diagClients[conn] = true
	h.mu.Unlock()
	go h.readUntilClosed(conn, h.diagClients)
}

func (h *Hub) readUntilClosed(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		h.mu.Lock()
		delete(set, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id":   h.frameID,
		"uptime_s":   time.Since(h.startTime).Seconds(),
		"count":      h.length,
		"bad_frames": h.short,
		"est_amps":   h.amps,
		"driver":     h.Driver,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Frames is the number of frames published so far.
func (h *Hub) Frames() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frameID
}

func (h *Hub) sendTopology(conn *websocket.Conn) {
	top := map[string]any{
		"count":  h.length,
		"order":  "GRB",
		"driver": h.Driver,
	}
	b, _ := json.Marshal(top)
	h.wmu.Lock()
	defer h.wmu.Unlock()
	_ = write(conn, b)
}

func write(c *websocket.Conn, b []byte) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, b)
}

func (h *Hub) broadcastFrame(id uint64, rgb []byte) {
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	h.wmu.Lock()
	defer h.wmu.Unlock()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if err := write(c, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// Push sends one diagnostic to every diag client.
func (h *Hub) Push(d Diagnostic) {
	b, _ := json.Marshal(d)
	h.wmu.Lock()
	defer h.wmu.Unlock()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.diagClients {
		if err := write(c, b); err != nil {
			log.Debug().Err(err).Msg("write diag")
		}
	}
}

// estimateCurrent returns the draw of an rgb frame in amps at 20mA per
// full-scale channel.
func estimateCurrent(rgb []byte) float64 {
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255.0 * 0.020
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
