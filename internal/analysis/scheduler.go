package analysis

import "sync"

// GroupNames is the fixed set of parallel processing groups.
var GroupNames = []string{"A", "B", "C", "D", "E"}

// Distribute assigns images to the five groups round-robin, so that
// consecutive frames land in different groups and no group is starved
// while another is overloaded.
func Distribute(images []string) map[string][]string {
	out := make(map[string][]string, len(GroupNames))
	for _, n := range GroupNames {
		out[n] = nil
	}
	for i, img := range images {
		name := GroupNames[i%len(GroupNames)]
		out[name] = append(out[name], img)
	}
	return out
}

// GroupResult is one group's consolidated outcome; the pipeline flattens
// every group's Results before handing them to Aggregate and
// BuildResultFlags.
type GroupResult struct {
	Name    string
	Status  GroupStatus
	Results []ImageResult
	Metrics Metrics
	ErrMsg  string
}

// RunAll distributes images across the five groups and runs each group's
// worker pool concurrently, returning every group's consolidated result.
// A failing group never blocks or cancels the others.
func RunAll(images []string, poolSize int, detector Detector, threshold float64, onProgress ProgressFunc) []GroupResult {
	assignment := Distribute(images)

	var wg sync.WaitGroup
	out := make([]GroupResult, len(GroupNames))

	for i, name := range GroupNames {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := NewGroup(name, assignment[name], poolSize, detector, threshold)
			results := g.Process(onProgress)
			status, _, _, _, _, errMsg, metrics := g.Status()
			out[i] = GroupResult{
				Name:    name,
				Status:  status,
				Results: results,
				Metrics: metrics,
				ErrMsg:  errMsg,
			}
		}()
	}
	wg.Wait()
	return out
}
