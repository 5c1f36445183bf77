package analysis

import (
	"runtime"
	"strings"
	"sync"

	"github.com/inodb/vibe-linx/internal/sv"
	"github.com/inodb/vibe-linx/internal/vcf"
)

// WorkItem is one sample to analyse. When Sample is nil it is loaded from
// Path with LoadSample.
type WorkItem struct {
	Seq    int
	Path   string
	Sample *sv.Sample
}

// WorkResult holds the report of one sample.
type WorkResult struct {
	Seq    int
	Path   string
	Report *Report
	Err    error
}

// RunParallel analyses work items using a pool of workers. Each sample owns
// its SV graph, so samples never share mutable state.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (a *Analyser) RunParallel(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				report, err := a.runItem(item)
				results <- WorkResult{Seq: item.Seq, Path: item.Path, Report: report, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (a *Analyser) runItem(item WorkItem) (*Report, error) {
	sample := item.Sample
	if sample == nil {
		var err error
		if sample, err = LoadSample(item.Path); err != nil {
			return nil, err
		}
	}
	return a.Run(sample)
}

// LoadSample reads a sample from a JSON graph file or, for .vcf and .vcf.gz
// paths, from a PURPLE SV VCF with every SV unclustered.
func LoadSample(path string) (*sv.Sample, error) {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if strings.HasSuffix(name, ".vcf") {
		return vcf.LoadSample(path, "")
	}
	return sv.LoadSample(path)
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
