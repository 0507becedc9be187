package app

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// engineStatus is the JSON body of the debug status endpoint.
type engineStatus struct {
	Healthy             bool   `json:"healthy"`
	Posted              uint64 `json:"posted"`
	Rejected            uint64 `json:"rejected"`
	Delivered           uint64 `json:"delivered"`
	Failed              uint64 `json:"failed"`
	Pending             int    `json:"pending"`
	HeartbeatInterval   string `json:"heartbeat_interval"`
	MeasurementInterval string `json:"measurement_interval"`
}

type statusProvider interface {
	Status() engineStatus
}

// statusBoard serves the status of the engine registered after startup.
type statusBoard struct {
	engine atomic.Value
}

// set registers the running engine; engines without status are ignored.
// Params: engine runtime engine.
// Returns: none.
func (b *statusBoard) set(engine engineRunner) {
	if provider, ok := engine.(statusProvider); ok {
		b.engine.Store(provider)
	}
}

func (b *statusBoard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	provider, ok := b.engine.Load().(statusProvider)
	if !ok {
		http.Error(w, "agent not started", http.StatusServiceUnavailable)
		return
	}

	status := provider.Status()
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
