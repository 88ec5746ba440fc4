package face

import (
	"time"

	"github.com/elliotchance/pie/v2"
)

func (f *Face) runIdleOverlay() {
	overlay, ok := f.pickOverlay()
	if !ok {
		return
	}

	f.clearOverlay()
	f.overlay = overlay.Kind
	revertAfter := f.uniformDuration(overlay.Revert)

	switch overlay.Kind {
	case OverlayBlink, OverlayLongBlink:
		f.eyes = EyesClosed
		f.pupilsVisible = false
		f.revertLater(revertAfter, f.resetEyes)

	case OverlayLookAround:
		f.pupilOffset.X += f.uniformInt(-lookAroundMaxX, lookAroundMaxX)
		f.pupilOffset.Y += f.uniformInt(-lookAroundMaxY, lookAroundMaxY)
		f.revertLater(revertAfter, f.resetEyes)

	case OverlayStickTongue:
		f.mouth = MouthAjar
		f.tongue = true
		f.revertLater(revertAfter, func() {
			f.tongue = false
			f.mouth = MouthClosed
		})

	case OverlayConcentrate:
		f.eyes = EyesSquint
		f.revertLater(revertAfter, f.resetEyes)
	}
}

// pickOverlay draws one overlay according to the configured weights.
func (f *Face) pickOverlay() (OverlaySpec, bool) {
	total := pie.Sum(pie.Map(f.cfg.Overlays, func(s OverlaySpec) float64 {
		return s.Weight
	}))
	if total <= 0 {
		return OverlaySpec{}, false
	}

	r := f.rnd.Float64() * total
	for _, overlay := range f.cfg.Overlays {
		if r < overlay.Weight {
			return overlay, true
		}
		r -= overlay.Weight
	}

	return f.cfg.Overlays[len(f.cfg.Overlays)-1], true
}

// revertLater undoes the current overlay after d unless it has been superseded meanwhile.
func (f *Face) revertLater(d time.Duration, undo func()) {
	token := f.overlayToken

	f.sched.After(d, func() {
		if f.overlayToken != token {
			return
		}

		undo()
		f.overlay = OverlayNone
		f.emit()
	})
}

// clearOverlay cancels pending reverts and removes any overlay leftovers.
func (f *Face) clearOverlay() {
	f.overlayToken++

	if f.overlay == OverlayNone {
		return
	}

	if f.overlay == OverlayStickTongue {
		f.tongue = false
		f.mouth = MouthClosed
	}

	f.overlay = OverlayNone
	f.resetEyes()
}
