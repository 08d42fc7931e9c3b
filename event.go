package shuttle

// Kind is the category of an event, used by event filters to decide which events may be pumped.
type Kind uint8

const (
	// KindInvocation is an event that runs a function on the loop goroutine (see Loop.InvokeLater).
	KindInvocation Kind = iota
	// KindInput is a user input event such as a key press or a mouse click.
	KindInput
	// KindFocus is an input focus change.
	KindFocus
	// KindPaint is a request to repaint all or part of the screen.
	KindPaint
	// KindCustom is any application-defined event.
	KindCustom
)

var kindNames = [...]string{
	KindInvocation: "invocation",
	KindInput:      "input",
	KindFocus:      "focus",
	KindPaint:      "paint",
	KindCustom:     "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return Kind(kind), true
		}
	}
	return 0, false
}

// Event is an entry of a loop's event queue.
type Event struct {
	Kind    Kind
	Payload any

	// run is set on invocation events
	run func()
}

// NewEvent creates an event of the given kind carrying an arbitrary payload.
func NewEvent(kind Kind, payload any) Event {
	return Event{
		Kind:    kind,
		Payload: payload,
	}
}

// EventFilter decides whether an event may be dispatched by an event pump.
type EventFilter func(Event) bool

// ExcludeKinds returns a filter that rejects events of the given kinds.
func ExcludeKinds(kinds ...Kind) EventFilter {
	return func(ev Event) bool {
		for _, kind := range kinds {
			if ev.Kind == kind {
				return false
			}
		}
		return true
	}
}
