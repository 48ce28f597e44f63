// Package event carries raw input from the window to the overlay as typed
// values and translates them into commands.
package event

// Kind distinguishes raw input events.
type Kind uint8

const (
	KeyPress Kind = iota
	Click
)

// Event is one raw interaction. Key is set for KeyPress, X and Y (output
// pixels) for Click.
type Event struct {
	Kind Kind
	Key  rune
	X, Y int
}

// Command is the action an event requests.
type Command uint8

const (
	None Command = iota
	Preset1
	Preset2
	Preset3
	Preset4
	ToggleParticles
	ResetParticles
	ApplyCameraBed
	ResetBed
	Snapshot
	Quit
)

var commandNames = [...]string{
	None:            "none",
	Preset1:         "preset-1",
	Preset2:         "preset-2",
	Preset3:         "preset-3",
	Preset4:         "preset-4",
	ToggleParticles: "toggle-particles",
	ResetParticles:  "reset-particles",
	ApplyCameraBed:  "apply-camera-bed",
	ResetBed:        "reset-bed",
	Snapshot:        "snapshot",
	Quit:            "quit",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Preset returns the preset number for Preset1..Preset4, or 0.
func (c Command) Preset() int {
	if c >= Preset1 && c <= Preset4 {
		return int(c-Preset1) + 1
	}
	return 0
}

// Translate maps an event to its command. Clicks carry no command.
func Translate(e Event) Command {
	if e.Kind != KeyPress {
		return None
	}
	switch e.Key {
	case '1':
		return Preset1
	case '2':
		return Preset2
	case '3':
		return Preset3
	case '4':
		return Preset4
	case 'c':
		return ToggleParticles
	case 'p':
		return ResetParticles
	case 'b':
		return ApplyCameraBed
	case 'r':
		return ResetBed
	case 's':
		return Snapshot
	case 'q':
		return Quit
	}
	return None
}

// QueueSize bounds the number of pending events.
const QueueSize = 64

// Queue is a bounded FIFO of events, filled by the input side and drained
// once per frame. Events beyond QueueSize are dropped.
type Queue struct {
	events  []Event
	dropped int
}

// Push appends e, reporting false when the queue is full.
func (q *Queue) Push(e Event) bool {
	if len(q.events) >= QueueSize {
		q.dropped++
		return false
	}
	q.events = append(q.events, e)
	return true
}

// Len is the number of pending events.
func (q *Queue) Len() int { return len(q.events) }

// Dropped counts events rejected because the queue was full.
func (q *Queue) Dropped() int { return q.dropped }

// Drain calls fn for every pending event in arrival order and empties the
// queue. Events pushed from fn are kept for the next drain.
func (q *Queue) Drain(fn func(Event) error) error {
	pending := q.events
	q.events = nil
	for i, e := range pending {
		if err := fn(e); err != nil {
			q.events = append(append([]Event(nil), pending[i+1:]...), q.events...)
			return err
		}
	}
	return nil
}
