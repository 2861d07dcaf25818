package ml

import "sync"

// MockMetrics implements MetricsInterface and TrainingMetrics for testing
type MockMetrics struct {
	mu           sync.Mutex
	predictions  int
	failures     int
	latencySum   float64
	modelAge     float64
	runs         int
	runFailures  int
	durationSum  float64
	trainingRows float64
	rowsCleaned  float64
	rowsDropped  float64
	rowsFiltered float64
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) TrainingRunsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
}

func (m *MockMetrics) TrainingFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runFailures++
}

func (m *MockMetrics) TrainingDurationObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durationSum += v
}

func (m *MockMetrics) TrainingRowsSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainingRows = v
}

func (m *MockMetrics) RowsCleanedAdd(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsCleaned += v
}

func (m *MockMetrics) RowsDroppedAdd(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsDropped += v
}

func (m *MockMetrics) RowsFilteredAdd(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsFiltered += v
}
