package pdforient

// upsideDownTolerance is the half-width of the skew band around 180 degrees
// that is treated as an upside-down page. The bound is exclusive: a skew of
// exactly 135 or 225 does not trigger a flip.
const upsideDownTolerance = 45

// Decision is the rotation chosen for a single page. Rotation is one of
// -90, 0, 90 or 180, where 0 means the page is already upright.
type Decision struct {
	Page     int
	Rotation int
}

// DecideRotation maps a page's orientation report to the rotation that makes
// the page upright.
//
// The coarse orientation settles the 90 and 270 cases outright; the skew angle
// is ignored there, even when it suggests something else. The 180 case is
// inferred from the skew angle instead, because the coarse field cannot be
// relied on to report it: any skew within 45 degrees of 180 counts as an
// upside-down page.
func DecideRotation(det Detection) int {
	switch {
	case det.Orientation == 90:
		return -90
	case det.Orientation == 270:
		return 90
	case isUpsideDown(det.Skew):
		return 180
	default:
		return 0
	}
}

func isUpsideDown(skew int) bool {
	delta := skew - 180
	if delta < 0 {
		delta = -delta
	}
	return delta < upsideDownTolerance
}
