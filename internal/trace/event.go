package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeServer   Scope = iota + 1 // server and CLI lifecycle
	ScopeRequest                   // one completion or hover request
	ScopeContext                   // one candidate assist context
	ScopeProposal                  // individual proposals
)

func (s Scope) String() string {
	switch s {
	case ScopeServer:
		return "server"
	case ScopeRequest:
		return "request"
	case ScopeContext:
		return "context"
	case ScopeProposal:
		return "proposal"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	Extra    map[string]string
}

// passes reports whether a tracer at level should keep ev.
func passes(level Level, ev *Event) bool {
	if ev.Kind == KindError {
		return level > LevelOff
	}
	return level.ShouldEmit(ev.Scope)
}
