package face

func (f *Face) animateSleep() {
	if f.rnd.Float64() < f.cfg.ParticleProbability {
		f.particles = append(f.particles, Point{X: canvasWidth - 30, Y: mouthY - 20})
	}

	kept := f.particles[:0]
	for _, p := range f.particles {
		p.X += particleStepX
		p.Y += particleStepY

		if p.Y < 0 || p.X < 0 {
			continue
		}
		kept = append(kept, p)
	}

	f.particles = kept
}
