package webd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/legend"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/zoom"
)

var ErrBadViewport = errors.New("bad viewport")

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
	Sessions  int                     `json:"sessions"`
	Documents int                     `json:"documents"`
	Source    string                  `json:"source"`
	Features  int                     `json:"features"`
	Mean      float64                 `json:"mean"`
	Metrics   metricsStatus           `json:"metrics"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
		Config:    s.Config,
		Sessions:  s.sessions.Len(),
		Documents: s.documents.Len(),
		Source:    s.Map.Source(),
		Features:  s.Map.Collection().Len(),
		Mean:      s.Map.Scale().Mean(),
		Metrics:   s.metrics.status(),
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(j); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// requestViewport reads ?width= and ?height=, falling back to the
// configured viewport for either one that is missing.
func (s *WebDaemon) requestViewport(r *http.Request) (params.Viewport, error) {
	v := s.Config.DefaultViewport
	if !v.Valid() {
		v = params.DefaultViewport()
	}
	q := r.URL.Query()
	for _, dim := range []struct {
		key string
		dst *float64
	}{
		{"width", &v.Width},
		{"height", &v.Height},
	} {
		raw := q.Get(dim.key)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return v, fmt.Errorf("%w: %s=%q", ErrBadViewport, dim.key, raw)
		}
		*dim.dst = f
	}
	return v, nil
}

func (s *WebDaemon) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.requestViewport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	buf := new(bytes.Buffer)
	if err := s.Map.WriteHTML(buf, v, SocketPath); err != nil {
		s.logger.Error("Failed to render page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, buf); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// document is a rendered SVG and its entity tag.
type document struct {
	body []byte
	etag string
}

// documentKey identifies the content of a rendered document.
type documentKey struct {
	Source   string
	Features int
	Mean     float64
	Viewport params.Viewport
}

func (s *WebDaemon) document(v params.Viewport) (*document, error) {
	if doc, ok := s.documents.Get(v); ok {
		return doc, nil
	}
	h, err := hashstructure.Hash(documentKey{
		Source:   s.Map.Source(),
		Features: s.Map.Collection().Len(),
		Mean:     s.Map.Scale().Mean(),
		Viewport: v,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := s.Map.WriteSVG(buf, v); err != nil {
		return nil, err
	}
	doc := &document{
		body: buf.Bytes(),
		etag: `"` + strconv.FormatUint(h, 16) + `"`,
	}
	s.documents.Add(v, doc)
	s.metrics.documents.Inc(1)
	s.logger.Debug("Rendered document", "viewport", v, "etag", doc.etag, "size", len(doc.body))
	return doc, nil
}

func (s *WebDaemon) handleSVG(w http.ResponseWriter, r *http.Request) {
	v, err := s.requestViewport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := s.document(v)
	if err != nil {
		s.logger.Error("Failed to render svg", "error", err)
		http.Error(w, "Failed to render svg", http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", doc.etag)
	if r.Header.Get("If-None-Match") == doc.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(doc.body); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type legendResponse struct {
	Title      string         `json:"title"`
	Mean       float64        `json:"mean"`
	Thresholds []float64      `json:"thresholds"`
	Entries    []legend.Entry `json:"entries"`
}

func (s *WebDaemon) handleLegend(w http.ResponseWriter, r *http.Request) {
	res := legendResponse{
		Title:      s.Map.Config().Legend.Title,
		Mean:       s.Map.Scale().Mean(),
		Thresholds: s.Map.Scale().Thresholds(),
		Entries:    s.Map.Legend(),
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type featureResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Density     *float64  `json:"density"`
	DensityText string    `json:"density_text"`
	Level       float64   `json:"level"`
	Fill        string    `json:"fill"`
	Centroid    orb.Point `json:"centroid"`
}

func (s *WebDaemon) handleFeature(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f, ok := s.Map.Feature(id)
	if !ok {
		http.Error(w, "no such feature", http.StatusNotFound)
		return
	}
	shape, _ := s.Map.Renderer().Shape(id)
	res := featureResponse{
		ID:          f.ID,
		Name:        f.Name,
		Density:     f.Density,
		DensityText: f.DensityText(),
		Level:       shape.Level,
		Fill:        shape.Fill,
		Centroid:    f.Centroid(),
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type clickRequest struct {
	// Session is empty on a client's first click.
	Session string `json:"session"`
	// Feature is empty for a click on the background.
	Feature string  `json:"feature"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type viewResponse struct {
	Session       string         `json:"session,omitempty"`
	State         string         `json:"state"`
	Centered      string         `json:"centered,omitempty"`
	ZoomLevel     float64        `json:"zoom_level"`
	Transform     zoom.Transform `json:"transform"`
	TransformAttr string         `json:"transform_attr"`
}

func newViewResponse(id string, st zoom.ViewState, v params.Viewport) viewResponse {
	t := st.Transform(v)
	res := viewResponse{
		Session:       id,
		State:         st.State().String(),
		ZoomLevel:     st.ZoomLevel,
		Transform:     t,
		TransformAttr: t.String(),
	}
	if st.Centered != nil {
		res.Centered = st.Centered.ID
	}
	return res
}

// session returns the live session with the given id, or a new one.
func (s *WebDaemon) session(id string, v params.Viewport) (string, *app.Session) {
	if id != "" {
		if item := s.sessions.Get(id); item != nil {
			return id, item.Value()
		}
	}
	id = uuid.NewString()
	sess := s.Map.NewSession(v, nil)
	s.sessions.Set(id, sess, ttlcache.DefaultTTL)
	s.logger.Debug("New view session", "session", id, "viewport", sess.Viewport())
	return id, sess
}

// handleViewClick serves clients that cannot hold a websocket open.
// The response carries the target transform; there are no frames.
func (s *WebDaemon) handleViewClick(w http.ResponseWriter, r *http.Request) {
	req := clickRequest{}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.logger.Warn("Failed to decode click", "error", err)
		http.Error(w, "Failed to decode click", http.StatusBadRequest)
		return
	}
	v := params.Viewport{Width: req.Width, Height: req.Height}
	if !v.Valid() {
		v = s.Config.DefaultViewport
	}
	id, sess := s.session(req.Session, v)
	s.metrics.clicks.Mark(1)
	st, err := sess.HandleClick(req.Feature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(newViewResponse(id, st, sess.Viewport())); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
