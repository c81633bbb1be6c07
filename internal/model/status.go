package model

// LoadStatus is the state of the most recent series load. Exactly one
// variant is active: Idle, Loading, Loaded or Failed.
type LoadStatus interface {
	loadStatus()
}

// Idle means nothing is being fetched. Message explains why.
type Idle struct{ Message string }

// Loading means a request is in flight.
type Loading struct{ Message string }

// Loaded carries a successfully parsed series. Build it with NewLoaded.
type Loaded struct{ series *Series }

// Failed carries a human readable error message.
type Failed struct{ Message string }

func (Idle) loadStatus()    {}
func (Loading) loadStatus() {}
func (Loaded) loadStatus()  {}
func (Failed) loadStatus()  {}

// NewLoaded wraps s. A nil series is reported as an empty one so a Loaded
// status never carries nil data.
func NewLoaded(s *Series) Loaded {
	if s == nil {
		s = &Series{}
	}
	return Loaded{series: s}
}

// Series returns the loaded series; never nil.
func (l Loaded) Series() *Series {
	if l.series == nil {
		return &Series{}
	}
	return l.series
}

// StatusState returns the wire name of the active variant.
func StatusState(s LoadStatus) string {
	switch s.(type) {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// StatusMessage returns the message of a status, empty for Loaded.
func StatusMessage(s LoadStatus) string {
	switch v := s.(type) {
	case Idle:
		return v.Message
	case Loading:
		return v.Message
	case Failed:
		return v.Message
	default:
		return ""
	}
}
