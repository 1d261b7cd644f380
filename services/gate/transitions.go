package gate

type State string

const (
	StatePlaying State = "playing"
	StateBreak   State = "break"
	StateDone    State = "done"
)

func (s State) String() string {
	return string(s)
}

type Event string

const (
	EventStart          Event = "start"
	EventEnded          Event = "ended"
	EventPaused         Event = "paused"
	EventResumed        Event = "resumed"
	EventFullscreenExit Event = "fullscreen-exit"
	EventResume         Event = "resume"
	EventDone           Event = "done"
	EventWatchOther     Event = "watch-other"
	EventEscape         Event = "escape"
	// EventPauseSettled is raised by the pause debounce, never by clients.
	EventPauseSettled Event = "pause-settled"
)

// ParseAction maps a client action name to an event. Only the actions a
// viewer can trigger directly are accepted.
func ParseAction(a string) (Event, bool) {
	switch ev := Event(a); ev {
	case EventStart, EventResume, EventDone, EventWatchOther, EventEscape:
		return ev, true
	}
	return "", false
}

// Player state codes reported by the embedded YouTube player.
const (
	PlayerCodeEnded   = 0
	PlayerCodePlaying = 1
	PlayerCodePaused  = 2
)

// PlayerEvent maps a provider state code to a gate event. Codes without a
// meaning for the gate (buffering, cued, unstarted) are dropped.
func PlayerEvent(code int) (Event, bool) {
	switch code {
	case PlayerCodeEnded:
		return EventEnded, true
	case PlayerCodePlaying:
		return EventResumed, true
	case PlayerCodePaused:
		return EventPaused, true
	}
	return "", false
}

type Effect int

const (
	EffectPlay Effect = iota
	EffectPause
	EffectStop
	EffectSeekBack
	EffectFullscreen
)

// Transition is one legal move. Close ends the session instead of entering
// To.
type Transition struct {
	From    State
	Event   Event
	To      State
	Close   bool
	Effects []Effect
}

var transitions = []Transition{
	{From: StatePlaying, Event: EventStart, To: StatePlaying, Effects: []Effect{EffectPlay, EffectFullscreen}},
	{From: StatePlaying, Event: EventEnded, To: StateBreak},
	{From: StatePlaying, Event: EventPauseSettled, To: StateBreak},
	{From: StatePlaying, Event: EventFullscreenExit, To: StateBreak, Effects: []Effect{EffectPause}},
	{From: StateBreak, Event: EventResume, To: StatePlaying, Effects: []Effect{EffectSeekBack, EffectPlay, EffectFullscreen}},
	{From: StateBreak, Event: EventDone, To: StateDone, Effects: []Effect{EffectPause}},
	{From: StateBreak, Event: EventWatchOther, Close: true, Effects: []Effect{EffectStop}},
	{From: StateBreak, Event: EventEscape, Close: true, Effects: []Effect{EffectStop}},
	{From: StateDone, Event: EventWatchOther, Close: true, Effects: []Effect{EffectStop}},
}

// TransitionFor looks up the move for ev in state from.
func TransitionFor(from State, ev Event) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.Event == ev {
			return t, true
		}
	}
	return Transition{}, false
}
