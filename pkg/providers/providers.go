// Package providers defines billing data sources and the concurrent
// fan-out that collects records from all of them.
package providers

import (
	"context"
	"sync"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// Provider fetches raw billing records from one cloud account or file.
type Provider interface {
	// Name identifies the provider in logs and partial-failure reports.
	Name() string
	// Fetch returns the provider's cost records plus the number of
	// malformed rows it discarded.
	Fetch(ctx context.Context) ([]billing.CostRecord, int, error)
}

// FetchResult is the combined outcome of a FetchAll fan-out.
type FetchResult struct {
	Records []billing.CostRecord
	// Dropped counts malformed rows discarded across all providers.
	Dropped int
	// Errors holds per-provider fetch failures keyed by provider name.
	// Successful providers do not appear.
	Errors map[string]error
}

// FetchAll queries every provider concurrently and waits for all of
// them. One provider failing does not discard the others' records;
// its error lands in the result's Errors map instead. Record order is
// stable: providers contribute in argument order regardless of which
// goroutine finishes first.
func FetchAll(ctx context.Context, provs []Provider) FetchResult {
	type slot struct {
		records []billing.CostRecord
		dropped int
		err     error
	}

	slots := make([]slot, len(provs))

	var wg sync.WaitGroup
	for i, p := range provs {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			records, dropped, err := p.Fetch(ctx)
			slots[i] = slot{records: records, dropped: dropped, err: err}
		}(i, p)
	}
	wg.Wait()

	result := FetchResult{Errors: make(map[string]error)}
	for i, p := range provs {
		s := slots[i]
		if s.err != nil {
			result.Errors[p.Name()] = s.err
			continue
		}
		result.Records = append(result.Records, s.records...)
		result.Dropped += s.dropped
	}
	return result
}
