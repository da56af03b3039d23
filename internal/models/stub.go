package models

import "fmt"

// StubState is what the health stub currently reports. A non-zero
// FailStatus (400-599) makes the health routes answer with that status
// instead of a health body.
type StubState struct {
	Commit           string `json:"commit"`
	Healthy          bool   `json:"healthy"`
	ConnectionStatus bool   `json:"connection_status"`
	FailStatus       int    `json:"fail_status"`
}

// NewStubState builds the initial state from configuration.
func NewStubState(cfg StubConfig) StubState {
	return StubState{
		Commit:           cfg.Commit,
		Healthy:          cfg.Healthy,
		ConnectionStatus: cfg.ConnectionStatus,
		FailStatus:       cfg.FailStatus,
	}
}

// Health returns the wire body for the current state.
func (s StubState) Health() HealthResponse {
	return HealthResponse{
		Commit:           s.Commit,
		Healthy:          s.Healthy,
		ConnectionStatus: s.ConnectionStatus,
	}
}

// Failing reports whether health requests should get FailStatus.
func (s StubState) Failing() bool {
	return s.FailStatus != 0
}

// StubStateUpdate is a partial update; nil fields keep their current value.
type StubStateUpdate struct {
	Commit           *string `json:"commit,omitempty"`
	Healthy          *bool   `json:"healthy,omitempty"`
	ConnectionStatus *bool   `json:"connection_status,omitempty"`
	FailStatus       *int    `json:"fail_status,omitempty"`
}

func (u *StubStateUpdate) Validate() error {
	if u.FailStatus != nil {
		status := *u.FailStatus
		if status != 0 && (status < 400 || status > 599) {
			return fmt.Errorf("invalid fail_status: %d", status)
		}
	}
	return nil
}

// Apply merges u into s.
func (s *StubState) Apply(u StubStateUpdate) {
	if u.Commit != nil {
		s.Commit = *u.Commit
	}
	if u.Healthy != nil {
		s.Healthy = *u.Healthy
	}
	if u.ConnectionStatus != nil {
		s.ConnectionStatus = *u.ConnectionStatus
	}
	if u.FailStatus != nil {
		s.FailStatus = *u.FailStatus
	}
}
