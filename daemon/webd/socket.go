package webd

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/event"
	"github.com/olahol/melody"
	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/render"
	"github.com/rotblauer/densitymap/zoom"
)

type websocketAction string

const (
	// Incoming.
	websocketActionClick   websocketAction = "click"
	websocketActionHover   websocketAction = "hover"
	websocketActionUnhover websocketAction = "unhover"

	// Outgoing.
	websocketActionState   websocketAction = "state"
	websocketActionFrame   websocketAction = "frame"
	websocketActionTooltip websocketAction = "tooltip"
	websocketActionError   websocketAction = "error"
)

// socketRequest is a pointer event from the page.
type socketRequest struct {
	Action websocketAction `json:"action"`
	ID     string          `json:"id"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
}

type socketMessage struct {
	Action    websocketAction       `json:"action"`
	Transform string                `json:"transform,omitempty"`
	Frame     *zoom.Frame           `json:"frame,omitempty"`
	View      *viewResponse         `json:"view,omitempty"`
	Tooltip   *render.TooltipUpdate `json:"tooltip,omitempty"`
	Error     string                `json:"error,omitempty"`
}

const socketViewKey = "view"

// socketView is the state behind one websocket: a map session whose
// animations play on a FrameAnimator, and the feed its frames are
// published on.
type socketView struct {
	session  *app.Session
	animator *zoom.FrameAnimator
	frames   event.FeedOf[zoom.Frame]
	sub      event.Subscription
}

func (v *socketView) close() {
	v.animator.Stop()
	v.sub.Unsubscribe()
}

// initMelody sets up the websocket handler.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(ms *melody.Session) {
		vp, err := s.requestViewport(ms.Request)
		if err != nil {
			s.logger.Warn("Bad websocket viewport", "error", err, "remote", ms.Request.RemoteAddr)
			vp = s.Config.DefaultViewport
		}
		view := &socketView{}
		view.animator = zoom.NewFrameAnimator(zoom.Identity(), s.Map.Config().Zoom.FrameRate, func(f zoom.Frame) {
			view.frames.Send(f)
		})
		view.session = s.Map.NewSession(vp, view.animator)

		frames := make(chan zoom.Frame)
		view.sub = view.frames.Subscribe(frames)
		go func() {
			for {
				select {
				case f := <-frames:
					s.metrics.frames.Mark(1)
					s.writeSocket(ms, socketMessage{
						Action:    websocketActionFrame,
						Transform: f.Transform.String(),
						Frame:     &f,
					})
				case err := <-view.sub.Err():
					if err != nil {
						s.logger.Error("Frame subscription failed", "error", err)
					}
					return
				}
			}
		}()
		ms.Set(socketViewKey, view)

		s.logger.Debug("Websocket connected", "remote", ms.Request.RemoteAddr, "viewport", view.session.Viewport())
		res := newViewResponse("", view.session.State(), view.session.Viewport())
		s.writeSocket(ms, socketMessage{Action: websocketActionState, View: &res})
	})

	s.melodyInstance.HandleMessage(s.handleSocketMessage)

	s.melodyInstance.HandleDisconnect(func(ms *melody.Session) {
		s.logger.Debug("Websocket disconnected", "remote", ms.Request.RemoteAddr)
		if view, ok := socketViewOf(ms); ok {
			view.close()
		}
	})

	s.melodyInstance.HandleError(func(ms *melody.Session, e error) {
		s.logger.Warn("Websocket error", "error", e, "remote", ms.Request.RemoteAddr)
	})
}

func socketViewOf(ms *melody.Session) (*socketView, bool) {
	v, ok := ms.Get(socketViewKey)
	if !ok {
		return nil, false
	}
	view, ok := v.(*socketView)
	return view, ok
}

func (s *WebDaemon) handleSocketMessage(ms *melody.Session, msg []byte) {
	view, ok := socketViewOf(ms)
	if !ok {
		return
	}
	req := socketRequest{}
	if err := json.Unmarshal(msg, &req); err != nil {
		s.writeSocket(ms, socketMessage{Action: websocketActionError, Error: "invalid message"})
		return
	}
	switch req.Action {
	case websocketActionClick:
		s.metrics.clicks.Mark(1)
		st, err := view.session.HandleClick(req.ID)
		if err != nil {
			s.writeSocket(ms, socketMessage{Action: websocketActionError, Error: err.Error()})
			return
		}
		res := newViewResponse("", st, view.session.Viewport())
		s.writeSocket(ms, socketMessage{Action: websocketActionState, View: &res})
	case websocketActionHover:
		s.metrics.tooltips.Mark(1)
		u, err := view.session.HandleHover(req.ID, orb.Point{req.X, req.Y})
		if err != nil {
			s.writeSocket(ms, socketMessage{Action: websocketActionError, Error: err.Error()})
			return
		}
		s.writeSocket(ms, socketMessage{Action: websocketActionTooltip, Tooltip: &u})
	case websocketActionUnhover:
		u := view.session.HandleUnhover()
		s.writeSocket(ms, socketMessage{Action: websocketActionTooltip, Tooltip: &u})
	default:
		s.writeSocket(ms, socketMessage{Action: websocketActionError, Error: "unknown action " + string(req.Action)})
	}
}

func (s *WebDaemon) writeSocket(ms *melody.Session, m socketMessage) {
	b, err := json.Marshal(m)
	if err != nil {
		s.logger.Error("Failed to marshal socket message", "error", err)
		return
	}
	if err := ms.Write(b); err != nil {
		s.logger.Debug("Failed to write socket message", "error", err)
	}
}
