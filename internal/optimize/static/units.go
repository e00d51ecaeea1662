// Package static implements the heuristic resource-sizing optimizer (spec §4.7): unit parsing for
// Kubernetes CPU/memory quantities and a rule set that flags missing, over-provisioned, or
// unbalanced container resource requests/limits using only what's in the manifest.
package static

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceSpec is a parsed (cpu millicores, memory bytes) pair, matching spec §3's
// ResourceRequirements "raw strings... parsed into millicores/bytes on demand" contract.
type ResourceSpec struct {
	CPUMillicores int64
	MemoryBytes   int64
}

// CPUString renders millicores back into the "<n>m" form used by fix_yaml snippets.
func (r ResourceSpec) CPUString() string {
	return fmt.Sprintf("%dm", r.CPUMillicores)
}

// MemoryString renders bytes as "<n>Gi" when they are a whole multiple of 1Gi, else as "<n>Mi"
// when they are a whole multiple of 1Mi, else as a whole number of Gi rounded up.
func (r ResourceSpec) MemoryString() string {
	const mi = 1024 * 1024
	const gi = 1024 * mi
	if r.MemoryBytes >= gi && r.MemoryBytes%gi == 0 {
		return fmt.Sprintf("%dGi", r.MemoryBytes/gi)
	}
	if r.MemoryBytes%mi == 0 {
		return fmt.Sprintf("%dMi", r.MemoryBytes/mi)
	}
	return fmt.Sprintf("%dGi", int64(ceilDiv(float64(r.MemoryBytes), float64(gi))))
}

func ceilDiv(a, b float64) float64 {
	q := a / b
	if q != float64(int64(q)) {
		return float64(int64(q)) + 1
	}
	return q
}

// ParseCPU accepts "<n>m" (millicores), "<n>" (whole cores), and "<n.n>" (fractional cores),
// returning millicores.
func ParseCPU(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty cpu quantity")
	}
	if strings.HasSuffix(s, "m") {
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "m"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cpu millicores %q: %w", s, err)
		}
		return n, nil
	}
	cores, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cpu quantity %q: %w", s, err)
	}
	return int64(cores * 1000), nil
}

var memoryUnits = map[string]int64{
	"Ki": 1024,
	"Mi": 1024 * 1024,
	"Gi": 1024 * 1024 * 1024,
	"Ti": 1024 * 1024 * 1024 * 1024,
	"K":  1000,
	"M":  1000 * 1000,
	"G":  1000 * 1000 * 1000,
	"T":  1000 * 1000 * 1000 * 1000,
}

// ParseMemory accepts "<n>{Ki|Mi|Gi|Ti}" (powers of 1024), "<n>{K|M|G|T}" (powers of 1000), and
// raw byte counts, returning bytes.
func ParseMemory(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty memory quantity")
	}
	// Longest-suffix-first so "Ki" isn't misread as "K".
	for _, suffix := range []string{"Ki", "Mi", "Gi", "Ti", "K", "M", "G", "T"} {
		if strings.HasSuffix(s, suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, suffix), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid memory quantity %q: %w", s, err)
			}
			return int64(n * float64(memoryUnits[suffix])), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory quantity %q: %w", s, err)
	}
	return n, nil
}
