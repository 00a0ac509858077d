package collector

import "sync"

// SourceUsage counts upstream calls made by one price source.
type SourceUsage struct {
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`
}

// usage is process-wide and written only by the fetchers.
var usage = struct {
	sync.Mutex
	m map[string]*SourceUsage
}{m: make(map[string]*SourceUsage)}

func recordCall(source string, err error) {
	usage.Lock()
	defer usage.Unlock()
	u, ok := usage.m[source]
	if !ok {
		u = &SourceUsage{}
		usage.m[source] = u
	}
	u.Requests++
	if err != nil {
		u.Failures++
	}
}

// Usage returns a snapshot of the per-source counters.
func Usage() map[string]SourceUsage {
	usage.Lock()
	defer usage.Unlock()
	out := make(map[string]SourceUsage, len(usage.m))
	for k, v := range usage.m {
		out[k] = *v
	}
	return out
}

// ResetUsage clears all counters.
func ResetUsage() {
	usage.Lock()
	defer usage.Unlock()
	usage.m = make(map[string]*SourceUsage)
}
