package analysis

// Verdict is a point on the inspection severity lattice. Values are
// ordered; aggregation only ever moves a verdict upward, never down.
type Verdict int

const (
	VerdictClean  Verdict = iota // 無欠点: no qualifying defect found
	VerdictMinor                 // こぶし: knot present, within the length tolerance
	VerdictDefect                // 節あり: knot present and over the length threshold
)

func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "無欠点"
	case VerdictMinor:
		return "こぶし"
	case VerdictDefect:
		return "節あり"
	default:
		return "unknown"
	}
}

// Upgrade returns the greater of v and other, never downgrading.
func (v Verdict) Upgrade(other Verdict) Verdict {
	if other > v {
		return other
	}
	return v
}

// Aggregate folds every image's surviving detections into one inspection
// verdict, per spec §4.8: only knot-variant detections (class_id 2-5)
// affect the verdict at all; discoloration and holes never upgrade it on
// their own. If no knot is present the verdict is VerdictClean. If a
// knot is present, the verdict depends on the single aggregate
// max_defect_length_across_all_images (the largest max(w,h)/100 over
// every retained detection in the inspection, knot or not): at or below
// lengthThreshold it is VerdictMinor, strictly above it VerdictDefect.
// The aggregation is idempotent: re-running it over the same detection
// set always produces the same verdict regardless of input order.
func Aggregate(results []ImageResult, lengthThreshold float64) Verdict {
	hasKnot := false
	maxLength := 0.0
	for _, r := range results {
		for _, d := range r.Detections {
			if d.ClassID.IsKnot() {
				hasKnot = true
			}
			if l := d.Length(); l > maxLength {
				maxLength = l
			}
		}
	}
	if !hasKnot {
		return VerdictClean
	}
	if maxLength > lengthThreshold {
		return VerdictDefect
	}
	return VerdictMinor
}
