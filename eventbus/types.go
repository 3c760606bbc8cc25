package eventbus

// UI event vocabulary shared by the brain, the relay server and the UI.
// The UI only ever consumes render, status and result events; their JSON
// shape is the wire contract and must stay stable.

// Event type tags.
const (
	EventRender = "render"
	EventStatus = "status"
	EventResult = "result"
)

// Status states.
const (
	StateRunning = "running"
	StateIdle    = "idle"
	StateError   = "error"
)

// Emotion is the avatar's facial expression for one turn.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionSurprised Emotion = "surprised"
	EmotionConfused  Emotion = "confused"
)

// Motion is the avatar's body animation for one turn.
type Motion string

const (
	MotionNone     Motion = "none"
	MotionBowSmall Motion = "bow_small"
	MotionNod      Motion = "nod"
	MotionShake    Motion = "shake"
	MotionWave     Motion = "wave"
)

var validEmotions = map[Emotion]bool{
	EmotionNeutral:   true,
	EmotionHappy:     true,
	EmotionSad:       true,
	EmotionAngry:     true,
	EmotionSurprised: true,
	EmotionConfused:  true,
}

var validMotions = map[Motion]bool{
	MotionNone:     true,
	MotionBowSmall: true,
	MotionNod:      true,
	MotionShake:    true,
	MotionWave:     true,
}

// UIEvent is the closed union of events pushed to the UI. Only the three
// concrete types below implement it.
type UIEvent interface {
	EventType() string
}

// RenderEvent tells the UI what to say and how to animate.
type RenderEvent struct {
	Type    string  `json:"type"`
	Text    string  `json:"text"`
	Emotion Emotion `json:"emotion"`
	Motion  Motion  `json:"motion"`
}

func (RenderEvent) EventType() string { return EventRender }

// StatusEvent is a transient busy/idle/error notification.
type StatusEvent struct {
	Type    string `json:"type"`
	State   string `json:"state"`
	Message string `json:"message"`
}

func (StatusEvent) EventType() string { return EventStatus }

// ResultEvent carries the outcome of a delegated task.
type ResultEvent struct {
	Type    string  `json:"type"`
	Summary string  `json:"summary"`
	Details *string `json:"details"`
}

func (ResultEvent) EventType() string { return EventResult }

func NewRender(text string, emotion Emotion, motion Motion) RenderEvent {
	return RenderEvent{Type: EventRender, Text: text, Emotion: emotion, Motion: motion}
}

func NewStatus(state, message string) StatusEvent {
	return StatusEvent{Type: EventStatus, State: state, Message: message}
}

func NewResult(summary string, details *string) ResultEvent {
	return ResultEvent{Type: EventResult, Summary: summary, Details: details}
}

// NormalizeEmotion maps untrusted input to a member of the emotion set.
// Anything that is not an exact match degrades to neutral.
func NormalizeEmotion(v interface{}) Emotion {
	if s, ok := v.(string); ok && validEmotions[Emotion(s)] {
		return Emotion(s)
	}
	return EmotionNeutral
}

// NormalizeMotion maps untrusted input to a member of the motion set.
// Anything that is not an exact match degrades to none.
func NormalizeMotion(v interface{}) Motion {
	if s, ok := v.(string); ok && validMotions[Motion(s)] {
		return Motion(s)
	}
	return MotionNone
}

// NormalizeRender builds a RenderEvent from an untrusted parsed reply.
// It is total: whatever the emotion/motion inputs are, the result always
// satisfies the enum invariants. Text emptiness is the caller's concern.
func NormalizeRender(text string, emotion, motion interface{}) RenderEvent {
	return RenderEvent{
		Type:    EventRender,
		Text:    text,
		Emotion: NormalizeEmotion(emotion),
		Motion:  NormalizeMotion(motion),
	}
}

// Valid reports whether an event satisfies its variant's invariants.
// The type switch is exhaustive over the closed union; an unknown variant
// is invalid by definition.
func Valid(evt UIEvent) bool {
	switch e := evt.(type) {
	case RenderEvent:
		return e.Type == EventRender && e.Text != "" && validEmotions[e.Emotion] && validMotions[e.Motion]
	case StatusEvent:
		return e.Type == EventStatus && (e.State == StateRunning || e.State == StateIdle || e.State == StateError)
	case ResultEvent:
		return e.Type == EventResult && e.Summary != ""
	default:
		return false
	}
}
