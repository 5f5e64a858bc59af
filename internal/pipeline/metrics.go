package pipeline

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	recognitions *prometheus.CounterVec
	duration     prometheus.Histogram
	available    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		recognitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_recognitions_total",
				Help: "Total number of OCR recognitions by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocr_recognition_duration_seconds",
			Help:    "Time spent inside the OCR engine.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ocr_engine_available",
			Help: "1 when an OCR engine was initialized at startup.",
		}),
	}
	for _, c := range []prometheus.Collector{m.recognitions, m.duration, m.available} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
