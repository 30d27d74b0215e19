package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// OutcomeOK is the outcome recorded for interactions that succeeded.
const OutcomeOK = "OK"

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu                sync.Mutex
	requestCount      map[string]int64
	errorCount        map[string]int64
	interactionCount  map[string]int64
	interactionMillis map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		errorCount:        make(map[string]int64),
		interactionCount:  make(map[string]int64),
		interactionMillis: make(map[string]int64),
	}
}

// RecordRequest increments counters for ops HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordInteraction counts one handled interaction. outcome is OutcomeOK or
// an error code.
func (m *Metrics) RecordInteraction(kind, name, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := kind + "|" + name + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionCount[key]++
	m.interactionMillis[kind+"|"+name] += duration.Milliseconds()
}

// Counter is one named counter value.
type Counter struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Snapshot is a point-in-time copy of every counter, sorted by key.
type Snapshot struct {
	Requests          []Counter `json:"requests"`
	Errors            []Counter `json:"errors"`
	Interactions      []Counter `json:"interactions"`
	InteractionMillis []Counter `json:"interaction_millis"`
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:          counters(m.requestCount),
		Errors:            counters(m.errorCount),
		Interactions:      counters(m.interactionCount),
		InteractionMillis: counters(m.interactionMillis),
	}
}

// Interactions returns the count recorded for kind, name and outcome.
func (m *Metrics) Interactions(kind, name, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interactionCount[kind+"|"+name+"|"+outcome]
}

func counters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
