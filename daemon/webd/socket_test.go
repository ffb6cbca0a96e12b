package webd

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

func dialTestSocket(t *testing.T, d *WebDaemon, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + SocketPath + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(gjson.Result) bool) gjson.Result {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		res := gjson.ParseBytes(msg)
		if match(res) {
			return res
		}
	}
}

func isAction(action string) func(gjson.Result) bool {
	return func(r gjson.Result) bool {
		return r.Get("action").String() == action
	}
}

func TestSocket_clickAnimates(t *testing.T) {
	d := newTestWebDaemon(t)
	conn := dialTestSocket(t, d, "?width=1000&height=600")

	hello := readUntil(t, conn, isAction("state"))
	if hello.Get("view.state").String() != "uncentered" {
		t.Errorf("expected initial uncentered state, got %s", hello.Raw)
	}
	if hello.Get("view.transform_attr").String() != "translate(0,0)scale(1)" {
		t.Errorf("expected identity transform, got %s", hello.Raw)
	}

	if err := conn.WriteJSON(map[string]any{"action": "click", "id": "a"}); err != nil {
		t.Fatal(err)
	}
	last := readUntil(t, conn, func(r gjson.Result) bool {
		return r.Get("action").String() == "frame" && r.Get("frame.done").Bool()
	})
	if got := last.Get("transform").String(); got != "translate(-50,-250)scale(5)" {
		t.Errorf("expected final frame at the centered transform, got %q", got)
	}

	if err := conn.WriteJSON(map[string]any{"action": "click", "id": ""}); err != nil {
		t.Fatal(err)
	}
	st := readUntil(t, conn, func(r gjson.Result) bool {
		return r.Get("action").String() == "state" && r.Get("view.state").String() == "uncentered"
	})
	if st.Get("view.zoom_level").Float() != 1 {
		t.Errorf("expected reset after background click, got %s", st.Raw)
	}
}

func TestSocket_tooltip(t *testing.T) {
	d := newTestWebDaemon(t)
	conn := dialTestSocket(t, d, "")
	readUntil(t, conn, isAction("state"))

	if err := conn.WriteJSON(map[string]any{"action": "hover", "id": "b", "x": 320, "y": 240}); err != nil {
		t.Fatal(err)
	}
	shown := readUntil(t, conn, isAction("tooltip"))
	if shown.Get("tooltip.html").String() != "Brown<br/>30" {
		t.Errorf("unexpected tooltip %s", shown.Raw)
	}
	if shown.Get("tooltip.opacity").Float() != 0.9 || shown.Get("tooltip.left").Float() != 320 {
		t.Errorf("unexpected tooltip %s", shown.Raw)
	}

	if err := conn.WriteJSON(map[string]any{"action": "unhover"}); err != nil {
		t.Fatal(err)
	}
	hidden := readUntil(t, conn, isAction("tooltip"))
	if hidden.Get("tooltip.opacity").Float() != 0 {
		t.Errorf("expected hidden tooltip, got %s", hidden.Raw)
	}
	if hidden.Get("tooltip.duration").Int() != int64(300*time.Millisecond) {
		t.Errorf("expected 300ms fade out, got %s", hidden.Raw)
	}
}

func TestSocket_errors(t *testing.T) {
	d := newTestWebDaemon(t)
	conn := dialTestSocket(t, d, "")
	readUntil(t, conn, isAction("state"))

	for _, msg := range []string{
		`{"action": "click", "id": "zz"}`,
		`{"action": "dance"}`,
		`not json`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		res := readUntil(t, conn, isAction("error"))
		if res.Get("error").String() == "" {
			t.Errorf("%s: expected an error message", msg)
		}
	}
}
