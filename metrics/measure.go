package metrics

import "fmt"

// MeasurePoints measures text as-is, without replication or trailing space,
// at sizePt points and returns its width in points.
func MeasurePoints(b Backend, family string, sizePt float64, style Style, text string) (float64, error) {
	face, err := b.Open(family, sizePt, style)
	if err != nil {
		return 0, fmt.Errorf("measure %q: %w", family, err)
	}
	defer face.Close()

	m := face.Measure(text, GenericTypographic)
	return m.Width / DPI * PointsPerInch, nil
}

// MeasurePixels measures text as-is at a size given in half-points and
// returns its width in whole pixels, truncated.
func MeasurePixels(b Backend, family string, halfPoints float64, style Style, text string) (int, error) {
	face, err := b.Open(family, halfPoints/2, style)
	if err != nil {
		return 0, fmt.Errorf("measure %q: %w", family, err)
	}
	defer face.Close()

	return int(face.Measure(text, GenericTypographic).Width), nil
}

// Backend returns the backend e measures with.
func (e *Estimator) Backend() Backend { return e.backend }
