package monitor

import "time"

type Component struct {
	Up        bool   `json:"up"`
	Required  bool   `json:"required"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type Status struct {
	Ready      bool                 `json:"ready"`
	Components map[string]Component `json:"components"`
	Backlog    int                  `json:"outbox_pending"`
	LastCheck  time.Time            `json:"last_check"`
}

func (s Status) clone() Status {
	out := s
	out.Components = make(map[string]Component, len(s.Components))
	for k, v := range s.Components {
		out.Components[k] = v
	}
	return out
}
