package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesStream(t *testing.T) {
	h := New(2)
	h.Driver = "sim"
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	c := dial(t, srv, "/ws")
	var top map[string]any
	readJSON(t, c, &top)
	assert.Equal(t, float64(2), top["count"])
	assert.Equal(t, "sim", top["driver"])

	h.Publish([]model.ColorWord{model.RGB(1, 2, 3), model.RGB(4, 5, 6)}, Report{Frame: 1, Pixels: 2})
	var f struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	readJSON(t, c, &f)
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, f.RGB)
}

func TestDiagOnShortFrame(t *testing.T) {
	h := New(3)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	c := dial(t, srv, "/diag")
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.diagClients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	h.Publish([]model.ColorWord{0, 0, 0}, Report{Frame: 1, Pixels: 1})
	var d Diagnostic
	readJSON(t, c, &d)
	assert.Equal(t, "FRAME.SHORT", d.Code)
	assert.Equal(t, Warn, d.Severity)
}

func TestHealth(t *testing.T) {
	h := New(4)
	h.Publish(make([]model.ColorWord, 4), Report{Frame: 1, Pixels: 4})
	h.Publish(make([]model.ColorWord, 4), Report{Frame: 2, Pixels: 4, Overflow: 1})

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["frame_id"])
	assert.Equal(t, float64(1), resp["bad_frames"])
	assert.Equal(t, float64(0), resp["est_amps"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, uint64(2), h.Frames())
}

func TestInspect(t *testing.T) {
	assert.Empty(t, Inspect(3, Report{Pixels: 3}))

	var codes []string
	for _, d := range Inspect(3, Report{Pixels: 1, Overflow: 2, TrailingBits: 5}) {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"FRAME.SHORT", "FRAME.OVERFLOW", "FRAME.PARTIAL_WORD"}, codes)
}

func TestEstimateCurrent(t *testing.T) {
	assert.InDelta(t, 0.060, estimateCurrent([]byte{255, 255, 255}), 1e-9)
	assert.Zero(t, estimateCurrent(nil))
}
