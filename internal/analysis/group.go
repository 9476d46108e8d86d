package analysis

import (
	"sync"
	"time"
)

// GroupStatus mirrors the four-state lifecycle of a processing group.
type GroupStatus string

const (
	GroupPending    GroupStatus = "pending"
	GroupProcessing GroupStatus = "processing"
	GroupCompleted  GroupStatus = "completed"
	GroupError      GroupStatus = "error"
)

// Metrics is the per-group performance summary surfaced over status and
// metrics, mirroring processing_group.py's performance_metrics dict.
type Metrics struct {
	ProcessingTime    time.Duration
	AvgTimePerImage   time.Duration
	ThroughputPerSec  float64
	ThreadUtilization float64
}

// Group processes the images assigned to it (A-E) with a dedicated
// 2-3 worker pool, isolating failures so one group's errors never affect
// another's results.
type Group struct {
	Name       string
	Images     []string
	PoolSize   int
	detector   Detector
	threshold  float64

	mu         sync.Mutex
	status     GroupStatus
	processed  int
	successful int
	failed     int
	results    []ImageResult
	errMsg     string
	metrics    Metrics
}

// NewGroup constrains the pool size to [2,3] as the original does.
func NewGroup(name string, images []string, poolSize int, detector Detector, threshold float64) *Group {
	if poolSize < 2 {
		poolSize = 2
	}
	if poolSize > 3 {
		poolSize = 3
	}
	return &Group{
		Name:      name,
		Images:    images,
		PoolSize:  poolSize,
		detector:  detector,
		threshold: threshold,
		status:    GroupPending,
	}
}

// ProgressFunc is invoked after each image completes, for real-time
// status reporting.
type ProgressFunc func(groupName string, processed, total int, result *ImageResult)

// Process runs the group's worker pool over its assigned images and
// returns the consolidated per-group result. Individual image failures
// are isolated: they count against failed/successful tallies but never
// abort the group, and a group with at least one success is still
// GroupCompleted even if others failed.
func (g *Group) Process(onProgress ProgressFunc) []ImageResult {
	start := time.Now()
	g.mu.Lock()
	g.status = GroupProcessing
	g.mu.Unlock()

	jobs := make(chan string)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for path := range jobs {
			result := g.analyzeOne(path)

			g.mu.Lock()
			g.processed++
			if result.Err == nil {
				g.successful++
				g.results = append(g.results, result)
			} else {
				g.failed++
			}
			processed := g.processed
			g.mu.Unlock()

			if onProgress != nil {
				var rp *ImageResult
				if result.Err == nil {
					rp = &result
				}
				onProgress(g.Name, processed, len(g.Images), rp)
			}
		}
	}

	for i := 0; i < g.PoolSize; i++ {
		wg.Add(1)
		go worker()
	}
	for _, path := range g.Images {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failed == 0 {
		g.status = GroupCompleted
	} else if g.successful > 0 {
		g.status = GroupCompleted
	} else {
		g.status = GroupError
		g.errMsg = "all images failed to process"
	}

	g.metrics = computeMetrics(elapsed, g.processed, g.PoolSize, len(g.Images))

	out := make([]ImageResult, len(g.results))
	copy(out, g.results)
	return out
}

func computeMetrics(elapsed time.Duration, processed, poolSize, totalImages int) Metrics {
	m := Metrics{ProcessingTime: elapsed}
	if processed > 0 {
		m.AvgTimePerImage = elapsed / time.Duration(processed)
		m.ThroughputPerSec = float64(processed) / elapsed.Seconds()
	}
	if totalImages > 0 && elapsed > 0 {
		ideal := elapsed / time.Duration(poolSize)
		util := float64(ideal) / float64(elapsed)
		if util > 1 {
			util = 1
		}
		m.ThreadUtilization = util
	}
	return m
}

func (g *Group) analyzeOne(path string) ImageResult {
	data, err := loadImage(path)
	if err != nil {
		return ImageResult{ImagePath: path, GroupName: g.Name, Err: err}
	}
	dets, err := g.detector.Predict(data)
	if err != nil {
		return ImageResult{ImagePath: path, GroupName: g.Name, Err: err}
	}
	kept, above := FilterByThreshold(dets, g.threshold)
	imageNo, _ := ParseImageNo(path)
	return ImageResult{
		ImagePath:             path,
		ImageNo:               imageNo,
		GroupName:             g.Name,
		Detections:            kept,
		ConfidenceAboveCutoff: above,
	}
}

// Status returns a snapshot of the group's current progress.
func (g *Group) Status() (status GroupStatus, processed, successful, failed, total int, errMsg string, metrics Metrics) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.processed, g.successful, g.failed, len(g.Images), g.errMsg, g.metrics
}

// loadImage reads an image's bytes from disk via defaultLoader; tests
// override it.
var loadImage = func(path string) ([]byte, error) {
	return defaultLoader(path)
}
