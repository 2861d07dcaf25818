package metrics

// MetricsWrapper adapts Metrics to the method set the ml package expects,
// keeping ml free of a prometheus import.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) RowsCleanedAdd(n float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.RowsCleaned.Add(n)
}

func (w *MetricsWrapper) RowsDroppedAdd(n float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.RowsDropped.Add(n)
}

func (w *MetricsWrapper) RowsFilteredAdd(n float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.RowsFiltered.Add(n)
}

func (w *MetricsWrapper) TrainingRunsInc() {
	if w == nil || w.m == nil {
		return
	}
	w.m.TrainingRuns.Inc()
}

func (w *MetricsWrapper) TrainingFailuresInc() {
	if w == nil || w.m == nil {
		return
	}
	w.m.TrainingFailures.Inc()
}

func (w *MetricsWrapper) TrainingDurationObserve(v float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.TrainingDuration.Observe(v)
}

func (w *MetricsWrapper) TrainingRowsSet(v float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.TrainingRows.Set(v)
}

func (w *MetricsWrapper) MLPredictionsInc() {
	if w == nil || w.m == nil {
		return
	}
	w.m.MLPredictions.Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	if w == nil || w.m == nil {
		return
	}
	w.m.MLFailures.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.MLLatency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.MLModelAge.Set(v)
}
