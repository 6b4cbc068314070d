package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks refresh cycles, provider failures and socket traffic
type Metrics struct {
	// Refresh metrics
	RefreshCount        atomic.Int64 // Total refresh cycles run
	DegradedCount       atomic.Int64 // Cycles where at least one provider failed
	ConsecutiveDegraded atomic.Int64 // Degraded cycles in a row
	LastRefreshTime     atomic.Value // time.Time of last refresh
	LastRefreshDuration atomic.Int64 // Duration in milliseconds
	LastSnapshotID      atomic.Value // string

	// WebSocket metrics
	ConnectionsTotal   atomic.Int64 // Total connections ever made
	ConnectionsCurrent atomic.Int64 // Current active connections
	ConnectionsPeak    atomic.Int64 // Peak concurrent connections
	MessagesOut        atomic.Int64 // Messages sent to clients
	MessagesFailed     atomic.Int64 // Failed message sends

	StartTime time.Time
	mu        sync.RWMutex
	providers map[string]*ProviderMetrics
	breakers  map[string]func() string
}

// ProviderMetrics tracks one upstream data provider
type ProviderMetrics struct {
	Provider       string           `json:"provider"`
	Successes      int64            `json:"successes"`
	Failures       int64            `json:"failures"`
	FailuresByKind map[string]int64 `json:"failures_by_kind,omitempty"`
	LastError      string           `json:"last_error,omitempty"`
	LastErrorTime  time.Time        `json:"last_error_time,omitempty"`
	BreakerState   string           `json:"breaker_state,omitempty"`
}

// New creates a new Metrics instance
func New() *Metrics {
	m := &Metrics{
		StartTime: time.Now(),
		providers: make(map[string]*ProviderMetrics),
		breakers:  make(map[string]func() string),
	}
	m.LastRefreshTime.Store(time.Time{})
	m.LastSnapshotID.Store("")
	return m
}

// RegisterBreaker exposes a provider's circuit breaker state in health output
func (m *Metrics) RegisterBreaker(provider string, state func() string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakers[provider] = state
	m.provider(provider)
}

// RecordRefresh records a completed refresh cycle
func (m *Metrics) RecordRefresh(start time.Time, snapshotID string, failures int) {
	m.RefreshCount.Add(1)
	m.LastRefreshTime.Store(time.Now())
	m.LastRefreshDuration.Store(time.Since(start).Milliseconds())
	m.LastSnapshotID.Store(snapshotID)

	if failures > 0 {
		m.DegradedCount.Add(1)
		m.ConsecutiveDegraded.Add(1)
	} else {
		m.ConsecutiveDegraded.Store(0)
	}
}

// RecordProviderSuccess records a successful provider call
func (m *Metrics) RecordProviderSuccess(provider string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider(provider).Successes++
}

// RecordProviderFailure records a failed provider call by error kind
func (m *Metrics) RecordProviderFailure(provider, kind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.provider(provider)
	p.Failures++
	if p.FailuresByKind == nil {
		p.FailuresByKind = make(map[string]int64)
	}
	p.FailuresByKind[kind]++
	p.LastError = message
	p.LastErrorTime = time.Now()
}

// provider must be called with mu held
func (m *Metrics) provider(name string) *ProviderMetrics {
	p, ok := m.providers[name]
	if !ok {
		p = &ProviderMetrics{Provider: name}
		m.providers[name] = p
	}
	return p
}

// RecordConnection records a new WebSocket connection
func (m *Metrics) RecordConnection() {
	m.ConnectionsTotal.Add(1)
	current := m.ConnectionsCurrent.Add(1)

	// Update peak if necessary
	for {
		peak := m.ConnectionsPeak.Load()
		if current <= peak {
			break
		}
		if m.ConnectionsPeak.CompareAndSwap(peak, current) {
			break
		}
	}
}

// RecordDisconnection records a WebSocket disconnection
func (m *Metrics) RecordDisconnection() {
	m.ConnectionsCurrent.Add(-1)
}

// RecordMessageSent records a message written to a client
func (m *Metrics) RecordMessageSent() {
	m.MessagesOut.Add(1)
}

// RecordMessageFailed records a failed message send
func (m *Metrics) RecordMessageFailed() {
	m.MessagesFailed.Add(1)
}

// HealthStatus represents the system health
type HealthStatus struct {
	Status        string            `json:"status"` // "healthy", "degraded", "unhealthy"
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Refresh       RefreshHealth     `json:"refresh"`
	WebSocket     WebSocketHealth   `json:"websocket"`
	Providers     []ProviderMetrics `json:"providers"`
	Warnings      []string          `json:"warnings,omitempty"`
}

type RefreshHealth struct {
	TotalRefreshes        int64     `json:"total_refreshes"`
	DegradedRefreshes     int64     `json:"degraded_refreshes"`
	ConsecutiveDegraded   int64     `json:"consecutive_degraded"`
	LastRefreshTime       time.Time `json:"last_refresh_time"`
	LastRefreshAgo        string    `json:"last_refresh_ago,omitempty"`
	LastRefreshDurationMs int64     `json:"last_refresh_duration_ms"`
	LastSnapshotID        string    `json:"last_snapshot_id,omitempty"`
}

type WebSocketHealth struct {
	CurrentConnections int64 `json:"current_connections"`
	PeakConnections    int64 `json:"peak_connections"`
	TotalConnections   int64 `json:"total_connections"`
	MessagesSent       int64 `json:"messages_sent"`
	MessagesFailed     int64 `json:"messages_failed"`
}

// GetHealth returns current health status
func (m *Metrics) GetHealth() HealthStatus {
	uptime := time.Since(m.StartTime)
	lastRefresh := m.LastRefreshTime.Load().(time.Time)

	m.mu.RLock()
	providers := make([]ProviderMetrics, 0, len(m.providers))
	for name, p := range m.providers {
		pc := *p
		if len(p.FailuresByKind) > 0 {
			pc.FailuresByKind = make(map[string]int64, len(p.FailuresByKind))
			for k, v := range p.FailuresByKind {
				pc.FailuresByKind[k] = v
			}
		}
		if state, ok := m.breakers[name]; ok {
			pc.BreakerState = state()
		}
		providers = append(providers, pc)
	}
	m.mu.RUnlock()
	sort.Slice(providers, func(i, j int) bool { return providers[i].Provider < providers[j].Provider })

	// Determine overall health status
	status := "healthy"
	var warnings []string

	consecutive := m.ConsecutiveDegraded.Load()
	if consecutive >= 3 {
		status = "unhealthy"
		warnings = append(warnings, "Provider failures in several consecutive refreshes")
	} else if consecutive >= 1 {
		status = "degraded"
		warnings = append(warnings, "Last refresh had provider failures")
	}

	for _, p := range providers {
		if p.BreakerState == "open" {
			warnings = append(warnings, "Circuit breaker open for "+p.Provider)
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	var lastRefreshAgo string
	if !lastRefresh.IsZero() {
		lastRefreshAgo = time.Since(lastRefresh).Round(time.Second).String()
	}

	return HealthStatus{
		Status:        status,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		Refresh: RefreshHealth{
			TotalRefreshes:        m.RefreshCount.Load(),
			DegradedRefreshes:     m.DegradedCount.Load(),
			ConsecutiveDegraded:   consecutive,
			LastRefreshTime:       lastRefresh,
			LastRefreshAgo:        lastRefreshAgo,
			LastRefreshDurationMs: m.LastRefreshDuration.Load(),
			LastSnapshotID:        m.LastSnapshotID.Load().(string),
		},
		WebSocket: WebSocketHealth{
			CurrentConnections: m.ConnectionsCurrent.Load(),
			PeakConnections:    m.ConnectionsPeak.Load(),
			TotalConnections:   m.ConnectionsTotal.Load(),
			MessagesSent:       m.MessagesOut.Load(),
			MessagesFailed:     m.MessagesFailed.Load(),
		},
		Providers: providers,
		Warnings:  warnings,
	}
}
