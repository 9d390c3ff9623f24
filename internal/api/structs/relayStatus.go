package structs

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// RelayStatus is what a relay remembers about its most recent onion. Nothing
// in the routing path reads it.
type RelayStatus struct {
	LastReceivedEncrypted []byte    `json:"lastReceivedEncrypted"`
	LastReceivedDecrypted []byte    `json:"lastReceivedDecrypted"`
	LastDestination       *int      `json:"lastDestination"`
	LastState             string    `json:"lastState"`
	LastError             string    `json:"lastError,omitempty"`
	LastReceivedAt        time.Time `json:"lastReceivedAt"`
	Received              int       `json:"received"`
	Forwarded             int       `json:"forwarded"`
	Delivered             int       `json:"delivered"`
	Rejected              int       `json:"rejected"`
	mu                    sync.RWMutex
}

func NewRelayStatus() *RelayStatus {
	return &RelayStatus{}
}

func (rs *RelayStatus) AddReceived(blob []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.Received++
	rs.LastReceivedEncrypted = blob
	rs.LastReceivedDecrypted = nil
	rs.LastDestination = nil
	rs.LastError = ""
	rs.LastReceivedAt = time.Now()
}

// AddPeeled records a successful peel. forwarded is false for a delivery.
func (rs *RelayStatus) AddPeeled(state string, payload []byte, destination int, forwarded bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.LastState = state
	rs.LastReceivedDecrypted = payload
	rs.LastDestination = &destination
	if forwarded {
		rs.Forwarded++
	} else {
		rs.Delivered++
	}
}

func (rs *RelayStatus) AddRejected(state string, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.LastState = state
	rs.Rejected++
	if err != nil {
		rs.LastError = err.Error()
	}
}

func (rs *RelayStatus) GetLastReceivedEncrypted() []byte {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.LastReceivedEncrypted
}

func (rs *RelayStatus) GetLastReceivedDecrypted() []byte {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.LastReceivedDecrypted
}

func (rs *RelayStatus) GetLastDestination() *int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.LastDestination == nil {
		return nil
	}
	d := *rs.LastDestination
	return &d
}

func (rs *RelayStatus) GetStatus() string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	str, err := json.Marshal(rs)
	if err != nil {
		slog.Error("error marshalling relay status", "err", err)
		return ""
	}
	return string(str)
}
