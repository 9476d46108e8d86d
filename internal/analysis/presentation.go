package analysis

import (
	"sort"
	"strings"
)

// Presentation is one of the up-to-five representative images chosen
// for an inspection.
type Presentation struct {
	GroupName string
	ImagePath string
	Score     float64
}

// presentationGroupNames labels the at-most-five balanced partitions the
// picker produces, in order.
var presentationGroupNames = []string{"A", "B", "C", "D", "E"}

const maxPresentationGroups = 5

// numberedImage is one frame path with its extracted sequence number
// and the severity score computed from its detections.
type numberedImage struct {
	no    int
	path  string
	score float64
	has   bool // true if any detection contributed to score
}

// classPriority implements spec §4.9 step 4's priority ordering: any
// knot variant outranks a hole, which outranks discoloration, which
// outranks an image with no retained detections.
func classPriority(id ClassID) int {
	if id.IsKnot() {
		return 3
	}
	switch id {
	case ClassHole:
		return 2
	case ClassDiscoloration:
		return 1
	}
	return 0
}

// imageScore returns priority*1000 + length, maximized over the image's
// detections, so the detection with the highest category wins and ties
// within a category are broken by the larger length.
func imageScore(dets []Detection) (float64, bool) {
	best := 0.0
	has := false
	for _, d := range dets {
		p := classPriority(d.ClassID)
		if p == 0 {
			continue
		}
		s := float64(p)*1000 + d.Length()
		if s > best {
			best = s
		}
		has = true
	}
	return best, has
}

// PickPresentation implements spec §4.9's independent seven-step
// algorithm over the full set of saved frame paths for an inspection
// and the detections recovered for each (keyed by image_no, as read
// back from the persisted InspectionDetail rows or computed alongside
// them in the same run):
//
//  1. Extract image_no from each path via the last No_(\d+) match;
//     paths that don't match are dropped.
//  2. Sort the remaining images ascending by image_no.
//  3. Partition into at most five balanced, contiguous groups.
//  4. Score every image: priority*1000+length, ties broken by length.
//  5. Pick the highest-scoring image per group, or the middle image if
//     every image in the group scored zero.
//  6. Normalize the winning path.
//
// Step 7 (replace the inspection's presentation rows wholesale in one
// transaction) is the store layer's responsibility, not this function's.
func PickPresentation(paths []string, detectionsByImageNo map[int][]Detection) []Presentation {
	images := make([]numberedImage, 0, len(paths))
	for _, p := range paths {
		no, ok := ParseImageNo(p)
		if !ok {
			continue
		}
		score, has := imageScore(detectionsByImageNo[no])
		images = append(images, numberedImage{no: no, path: p, score: score, has: has})
	}
	if len(images) == 0 {
		return nil
	}

	sort.Slice(images, func(i, j int) bool { return images[i].no < images[j].no })

	groups := partition(images)

	out := make([]Presentation, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		winner := pickWinner(g)
		out = append(out, Presentation{
			GroupName: presentationGroupNames[i],
			ImagePath: normalizePath(winner.path),
			Score:     winner.score,
		})
	}
	return out
}

// partition splits images into at most five contiguous, size-balanced
// groups: the first (n mod 5) groups get floor(n/5)+1 images, the rest
// get floor(n/5). If n<=5 every image is its own group.
func partition(images []numberedImage) [][]numberedImage {
	n := len(images)
	if n <= maxPresentationGroups {
		groups := make([][]numberedImage, n)
		for i, img := range images {
			groups[i] = []numberedImage{img}
		}
		return groups
	}

	base := n / maxPresentationGroups
	remainder := n % maxPresentationGroups
	groups := make([][]numberedImage, 0, maxPresentationGroups)
	idx := 0
	for g := 0; g < maxPresentationGroups; g++ {
		size := base
		if g < remainder {
			size++
		}
		groups = append(groups, images[idx:idx+size])
		idx += size
	}
	return groups
}

func pickWinner(g []numberedImage) numberedImage {
	anyDefect := false
	for _, img := range g {
		if img.has {
			anyDefect = true
			break
		}
	}
	if !anyDefect {
		return g[len(g)/2]
	}
	best := g[0]
	for _, img := range g[1:] {
		if img.score > best.score {
			best = img
		}
	}
	return best
}

// normalizePath rewrites a filesystem path into the forward-slash,
// web-servable form spec §4.9 step 6 requires: everything up to and
// including "/data/images/" is stripped, so the stored path starts
// right after it. Paths that never go through /data/images/ fall back
// to an "inspection/..." relative form anchored at the first
// "inspection" path segment.
func normalizePath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	const marker = "/data/images/"
	if idx := strings.Index(p, marker); idx != -1 {
		return p[idx+len(marker):]
	}
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if seg == "inspection" {
			return strings.Join(segments[i:], "/")
		}
	}
	return "inspection/" + strings.TrimPrefix(p, "/")
}
