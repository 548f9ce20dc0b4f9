package domain

import "time"

// Transition is what a single probe result did to a target.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionWentInactive
	TransitionRecovered
)

func (t Transition) String() string {
	switch t {
	case TransitionWentInactive:
		return "went_inactive"
	case TransitionRecovered:
		return "recovered"
	default:
		return "none"
	}
}

// Policy carries the per-job alerting knobs the transition rule needs.
type Policy struct {
	Threshold      time.Duration
	ActiveInterval time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.ActiveInterval <= 0 {
		p.ActiveInterval = DefaultActiveInterval
	}
	return p
}

// Due reports whether the target should be probed at now. Only a healthy
// target is throttled; an inactive one is probed on every tick.
func (s *TargetState) Due(now time.Time) bool {
	return !s.IsActive || !now.Before(s.NextCheckTime)
}

// InactiveFor is the time since the last successful probe.
func (s *TargetState) InactiveFor(now time.Time) time.Duration {
	return now.Sub(s.LastActive)
}

// Apply folds one probe result into the record and returns the transition
// it caused. A target goes inactive at most once per episode: repeated
// failures after that return TransitionNone until a success resets it.
func (s *TargetState) Apply(ok bool, now time.Time, p Policy) Transition {
	p = p.withDefaults()
	s.Checks++
	s.LastChecked = now

	if ok {
		wasInactive := s.CurrentStatus == StatusInactive
		s.IsActive = true
		s.CurrentStatus = StatusActive
		s.LastActive = now
		s.DownSince = nil
		s.NextCheckTime = now.Add(p.ActiveInterval)
		s.LastError = ""
		if wasInactive {
			return TransitionRecovered
		}
		return TransitionNone
	}

	s.Failures++
	if !s.IsActive {
		return TransitionNone
	}
	if s.InactiveFor(now) >= p.Threshold {
		down := now
		s.IsActive = false
		s.CurrentStatus = StatusInactive
		s.DownSince = &down
		return TransitionWentInactive
	}
	// still inside the grace window
	s.CurrentStatus = StatusActive
	return TransitionNone
}

// Clone returns a copy that shares no pointers with s.
func (s *TargetState) Clone() TargetState {
	c := *s
	if s.DownSince != nil {
		d := *s.DownSince
		c.DownSince = &d
	}
	return c
}
