package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictUpgradeOnly(t *testing.T) {
	v := VerdictClean
	v = v.Upgrade(VerdictMinor)
	assert.Equal(t, VerdictMinor, v)
	v = v.Upgrade(VerdictClean)
	assert.Equal(t, VerdictMinor, v, "must never downgrade")
	v = v.Upgrade(VerdictDefect)
	assert.Equal(t, VerdictDefect, v)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	results := []ImageResult{
		{Detections: []Detection{{ClassID: ClassDeadKnot, W: 200, H: 50, Confidence: 0.9}}},
		{Detections: []Detection{{ClassID: ClassLiveKnot, W: 1200, H: 40, Confidence: 0.9}}},
	}
	v1 := Aggregate(results, 10)
	reversed := []ImageResult{results[1], results[0]}
	v2 := Aggregate(reversed, 10)
	assert.Equal(t, v1, v2)
	assert.Equal(t, VerdictDefect, v1)
}

func TestKnotBelowThresholdIsMinor(t *testing.T) {
	results := []ImageResult{
		{Detections: []Detection{{ClassID: ClassDeadKnot, W: 300, H: 10, Confidence: 0.9}}}, // length 3
	}
	assert.Equal(t, VerdictMinor, Aggregate(results, 10))
}

func TestKnotAtThresholdIsStillMinor(t *testing.T) {
	results := []ImageResult{
		{Detections: []Detection{{ClassID: ClassDeadKnot, W: 1000, H: 10, Confidence: 0.9}}}, // length 10
	}
	assert.Equal(t, VerdictMinor, Aggregate(results, 10))
}

func TestKnotAboveThresholdIsDefect(t *testing.T) {
	results := []ImageResult{
		{Detections: []Detection{{ClassID: ClassDeadKnot, W: 1200, H: 40, Confidence: 0.9}}}, // length 12
	}
	assert.Equal(t, VerdictDefect, Aggregate(results, 10))
}

func TestDiscolorationAndHoleNeverUpgradeVerdict(t *testing.T) {
	results := []ImageResult{
		{Detections: []Detection{
			{ClassID: ClassDiscoloration, W: 5000, H: 5000, Confidence: 0.9},
			{ClassID: ClassHole, W: 5000, H: 5000, Confidence: 0.9},
		}},
	}
	assert.Equal(t, VerdictClean, Aggregate(results, 10))
}

func TestLengthFromNonKnotDetectionCanStillPushKnotOverThreshold(t *testing.T) {
	// A dead knot by itself is under the length threshold, but a larger
	// discoloration region in the same inspection sets the aggregate
	// max_defect_length_across_all_images, which does include non-knot
	// detections per spec §3's "max across all retained detections".
	results := []ImageResult{
		{Detections: []Detection{{ClassID: ClassDeadKnot, W: 300, H: 10, Confidence: 0.9}}},
		{Detections: []Detection{{ClassID: ClassDiscoloration, W: 1200, H: 10, Confidence: 0.9}}},
	}
	assert.Equal(t, VerdictDefect, Aggregate(results, 10))
}
