package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseServerVersion converts a PostgreSQL version string into
// server_version_num form: "17.5" becomes 170005, "PostgreSQL 16" becomes
// 160000 and "9.6.24" becomes 90624. A bare number of five or more digits is
// taken as server_version_num already.
func ParseServerVersion(versionStr string) (int, error) {
	versionStr = strings.TrimSpace(versionStr)
	versionStr = strings.TrimPrefix(versionStr, "PostgreSQL ")
	if versionStr == "" {
		return 0, fmt.Errorf("invalid version string: empty")
	}

	parts := strings.Split(versionStr, ".")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid version string: %s", versionStr)
		}
		numbers = append(numbers, n)
	}

	major := numbers[0]
	switch {
	case len(numbers) == 1 && major >= 10000:
		return major, nil
	case major >= 10:
		if len(numbers) > 2 {
			return 0, fmt.Errorf("invalid version string: %s", versionStr)
		}
		minor := 0
		if len(numbers) == 2 {
			minor = numbers[1]
		}
		return major*10000 + minor, nil
	default:
		if len(numbers) < 2 || len(numbers) > 3 {
			return 0, fmt.Errorf("invalid version string: %s", versionStr)
		}
		patch := 0
		if len(numbers) == 3 {
			patch = numbers[2]
		}
		return major*10000 + numbers[1]*100 + patch, nil
	}
}
