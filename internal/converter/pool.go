package converter

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
)

// Job is one file paired with the profile that handles it. A nil Profile
// means no profile matched the file.
type Job struct {
	Path    string
	Profile *config.Profile
}

// RunAll processes the jobs concurrently, at most concurrency at a time, and
// returns the results in job order. Files are independent: a failure in one
// never stops the others.
func RunAll(ctx context.Context, jobs []Job, mainConfig *config.MainConfig, concurrency int, opts ...Option) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	type indexed struct {
		i int
		r Result
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	results := make(chan indexed, len(jobs))

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()

			if job.Profile == nil {
				results <- indexed{i, Result{
					FilePath: job.Path,
					Error:    fmt.Errorf("no matching profile found"),
				}}
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- indexed{i, Result{FilePath: job.Path, Profile: job.Profile.Code, Error: ctx.Err()}}
				return
			}
			defer func() { <-sem }()

			results <- indexed{i, New(job.Path, job.Profile, mainConfig, opts...).Run(ctx)}
		}(i, job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, len(jobs))
	for r := range results {
		out[r.i] = r.r
	}
	return out
}
