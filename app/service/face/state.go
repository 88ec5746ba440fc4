package face

// State is the main animation state.
type State string

const (
	StateIdle     State = "idle"
	StateSpeaking State = "speaking"
	StateSleeping State = "sleeping"
)

// Overlay is a short self-reverting animation played only while idle.
type Overlay string

const (
	OverlayNone        Overlay = ""
	OverlayBlink       Overlay = "blinking"
	OverlayLookAround  Overlay = "looking_around"
	OverlayLongBlink   Overlay = "long_blink"
	OverlayStickTongue Overlay = "sticking_tongue"
	OverlayConcentrate Overlay = "concentrating"
)

type EyeShape string

const (
	EyesOpen   EyeShape = "open"
	EyesClosed EyeShape = "closed"
	EyesSquint EyeShape = "squint"
)

type MouthShape string

const (
	MouthClosed MouthShape = "closed"
	MouthOpen   MouthShape = "open"
	MouthAjar   MouthShape = "ajar"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is an immutable snapshot of everything the renderer needs to draw.
type Frame struct {
	State         State      `json:"state"`
	Overlay       Overlay    `json:"overlay,omitempty"`
	Eyes          EyeShape   `json:"eyes"`
	PupilsVisible bool       `json:"pupilsVisible"`
	PupilOffset   Point      `json:"pupilOffset"`
	Mouth         MouthShape `json:"mouth"`
	MouthJitter   int        `json:"mouthJitter"`
	Tongue        bool       `json:"tongue"`
	Particles     []Point    `json:"particles,omitempty"`
}

// Renderer draws frames. It is always called on the animation goroutine.
type Renderer interface {
	Render(frame Frame)
}

type RendererFunc func(frame Frame)

func (f RendererFunc) Render(frame Frame) {
	f(frame)
}
