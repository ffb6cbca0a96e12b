package webd

import (
	"github.com/ethereum/go-ethereum/metrics"
)

// webMetrics counts what viewers do with the map.
type webMetrics struct {
	reg       metrics.Registry
	documents metrics.Counter
	clicks    metrics.Meter
	frames    metrics.Meter
	tooltips  metrics.Meter
}

type meterStatus struct {
	Count int64   `json:"count"`
	Rate1 float64 `json:"rate1"`
}

type metricsStatus struct {
	Documents int64       `json:"documents_rendered"`
	Clicks    meterStatus `json:"clicks"`
	Frames    meterStatus `json:"frames"`
	Tooltips  meterStatus `json:"tooltips"`
}

func newWebMetrics() *webMetrics {
	// Won't record anything without this global setting.
	metrics.Enabled = true

	m := &webMetrics{
		reg:       metrics.NewRegistry(),
		documents: metrics.NewCounter(),
		clicks:    metrics.NewMeter(),
		frames:    metrics.NewMeter(),
		tooltips:  metrics.NewMeter(),
	}
	for name, metric := range map[string]interface{}{
		"documents.count": m.documents,
		"clicks.meter":    m.clicks,
		"frames.meter":    m.frames,
		"tooltips.meter":  m.tooltips,
	} {
		if err := m.reg.Register(name, metric); err != nil {
			panic(err)
		}
	}
	return m
}

func meterOf(m metrics.Meter) meterStatus {
	snap := m.Snapshot()
	return meterStatus{Count: snap.Count(), Rate1: snap.Rate1()}
}

func (m *webMetrics) status() metricsStatus {
	return metricsStatus{
		Documents: m.documents.Snapshot().Count(),
		Clicks:    meterOf(m.clicks),
		Frames:    meterOf(m.frames),
		Tooltips:  meterOf(m.tooltips),
	}
}

func (m *webMetrics) stop() {
	m.clicks.Stop()
	m.frames.Stop()
	m.tooltips.Stop()
}
