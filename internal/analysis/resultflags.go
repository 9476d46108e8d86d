package analysis

// ResultFlags is the per-inspection defect summary persisted on the
// InspectionResult row: one boolean per spec §3 flag, OR-latched across
// every retained detection in the inspection, plus the length aggregate
// MAX-updated the same way. Both reducers are idempotent, so replaying
// the same detection set in any order (or more than once) never changes
// the outcome.
type ResultFlags struct {
	Discoloration bool
	Hole          bool
	Knot          bool
	DeadKnot      bool
	LiveKnot      bool
	TightKnot     bool
	Length        float64
}

// classID to flag mapping. dead-knot(2) and live-knot(5) are literal
// matches for the dead_knot/live_knot flags; the two flow-knot variants
// (3, 4) both describe an intergrown ("flow") knot rather than a
// dead/live distinction, so both latch tight_knot.
func applyClass(f *ResultFlags, id ClassID) {
	switch id {
	case ClassDiscoloration:
		f.Discoloration = true
	case ClassHole:
		f.Hole = true
	case ClassDeadKnot:
		f.Knot = true
		f.DeadKnot = true
	case ClassFlowKnotDead, ClassFlowKnotLive:
		f.Knot = true
		f.TightKnot = true
	case ClassLiveKnot:
		f.Knot = true
		f.LiveKnot = true
	}
}

// BuildResultFlags folds every image's retained detections into one
// ResultFlags value for the inspection.
func BuildResultFlags(results []ImageResult) ResultFlags {
	var f ResultFlags
	for _, r := range results {
		for _, d := range r.Detections {
			applyClass(&f, d.ClassID)
			if l := d.Length(); l > f.Length {
				f.Length = l
			}
		}
	}
	return f
}
