package structs

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type UserStatus struct {
	LastSentMessage     *string `json:"lastSentMessage"`
	LastReceivedMessage *string `json:"lastReceivedMessage"`
	LastCircuit         []int   `json:"lastCircuit"`
	MessagesSent        int     `json:"messagesSent"`
	MessagesReceived    int     `json:"messagesReceived"`
	mu                  sync.RWMutex
}

func NewUserStatus() *UserStatus {
	return &UserStatus{}
}

func (us *UserStatus) AddSent(message string, circuit []int) {
	us.mu.Lock()
	defer us.mu.Unlock()
	us.LastSentMessage = &message
	us.LastCircuit = append([]int(nil), circuit...)
	us.MessagesSent++
}

func (us *UserStatus) AddReceived(message string) {
	us.mu.Lock()
	defer us.mu.Unlock()
	us.LastReceivedMessage = &message
	us.MessagesReceived++
}

func (us *UserStatus) GetLastSentMessage() *string {
	us.mu.RLock()
	defer us.mu.RUnlock()
	return us.LastSentMessage
}

func (us *UserStatus) GetLastReceivedMessage() *string {
	us.mu.RLock()
	defer us.mu.RUnlock()
	return us.LastReceivedMessage
}

func (us *UserStatus) GetLastCircuit() []int {
	us.mu.RLock()
	defer us.mu.RUnlock()
	return append([]int(nil), us.LastCircuit...)
}

func (us *UserStatus) GetStatus() string {
	us.mu.RLock()
	defer us.mu.RUnlock()
	str, err := json.Marshal(us)
	if err != nil {
		slog.Error("error marshalling user status", "err", err)
		return ""
	}
	return string(str)
}
