package zoom

import (
	"context"
	"sync"
	"time"
)

// Frame is one step of a running animation.
type Frame struct {
	Transform Transform `json:"transform"`
	// Progress is the eased-time fraction in [0, 1] the frame was taken at.
	Progress float64 `json:"progress"`
	Done     bool    `json:"done"`
}

// FrameAnimator plays animations in real time, handing interpolated frames
// to a sink at a fixed rate. Starting an animation cancels the running one;
// the new animation starts wherever the last frame left off.
//
// The sink is called with the animator's lock held and must not call back
// into the animator.
type FrameAnimator struct {
	interval time.Duration
	sink     func(Frame)

	mu      sync.Mutex
	current Transform
	gen     uint64
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func NewFrameAnimator(initial Transform, frameRate int, sink func(Frame)) *FrameAnimator {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &FrameAnimator{
		interval: time.Second / time.Duration(frameRate),
		sink:     sink,
		current:  initial,
	}
}

// Current is the transform of the last emitted frame.
func (a *FrameAnimator) Current() Transform {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *FrameAnimator) AnimateTransform(from, to Transform, d time.Duration, ease Ease) {
	if ease == nil {
		ease = EaseLinear
	}
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	gen := a.gen
	if d <= 0 {
		a.cancel = nil
		a.current = to
		a.emitLocked(Frame{Transform: to, Progress: 1, Done: true})
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer cancel()
		a.run(ctx, gen, from, to, d, ease)
	}()
}

func (a *FrameAnimator) run(ctx context.Context, gen uint64, from, to Transform, d time.Duration, ease Ease) {
	start := time.Now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := float64(now.Sub(start)) / float64(d)
			if t > 1 {
				t = 1
			}
			f := Frame{
				Transform: Interpolate(from, to, ease(t)),
				Progress:  t,
				Done:      t >= 1,
			}
			if f.Done {
				f.Transform = to
			}
			if !a.emit(gen, f) || f.Done {
				return
			}
		}
	}
}

// emit publishes f unless its animation has been superseded.
func (a *FrameAnimator) emit(gen uint64, f Frame) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return false
	}
	a.current = f.Transform
	a.emitLocked(f)
	return true
}

func (a *FrameAnimator) emitLocked(f Frame) {
	if a.sink != nil {
		a.sink(f)
	}
}

// Stop cancels any running animation and waits for it to exit.
// Later animations are ignored.
func (a *FrameAnimator) Stop() {
	a.mu.Lock()
	a.stopped = true
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// Call is one recorded AnimateTransform invocation.
type Call struct {
	From, To Transform
	Duration time.Duration
	Ease     Ease
}

// RecordingAnimator completes every animation instantly and remembers it.
type RecordingAnimator struct {
	Calls   []Call
	current Transform
}

func NewRecordingAnimator(initial Transform) *RecordingAnimator {
	return &RecordingAnimator{current: initial}
}

func (r *RecordingAnimator) AnimateTransform(from, to Transform, d time.Duration, ease Ease) {
	r.Calls = append(r.Calls, Call{From: from, To: to, Duration: d, Ease: ease})
	r.current = to
}

func (r *RecordingAnimator) Current() Transform {
	return r.current
}

// Last returns the most recent call.
func (r *RecordingAnimator) Last() (Call, bool) {
	if len(r.Calls) == 0 {
		return Call{}, false
	}
	return r.Calls[len(r.Calls)-1], true
}
