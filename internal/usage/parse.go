package usage

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	NanoSuffix = "n"
	KibiSuffix = "Ki"
)

// ParseSuffixed strips the unit suffix from raw, when present, and parses
// what is left as a base-10 integer. A bare "0" is how an idle container's
// usage is served. The number is returned as written; no scaling happens.
func ParseSuffixed(raw, suffix string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSuffix(raw, suffix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not an integer with suffix %q: %w", raw, suffix, err)
	}

	return n, nil
}

// SumSuffixed adds up ParseSuffixed over values and stops at the first bad one.
func SumSuffixed(values []string, suffix string) (int64, error) {
	var total int64
	for _, v := range values {
		n, err := ParseSuffixed(v, suffix)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
