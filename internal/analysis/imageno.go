package analysis

import (
	"regexp"
	"strconv"
)

// imageNoPattern matches the No_0000-style sequence number the frame
// writer embeds in every filename; the presentation picker and the
// per-image result builder both key off the last match in the path.
var imageNoPattern = regexp.MustCompile(`No_(\d+)`)

// ParseImageNo extracts the image sequence number from a frame path,
// using the last No_(\d+) match so a path with several numbered
// directory components still resolves to the frame's own number.
// ok is false if no match was found.
func ParseImageNo(path string) (n int, ok bool) {
	matches := imageNoPattern.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return 0, false
	}
	last := matches[len(matches)-1]
	v, err := strconv.Atoi(last[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
