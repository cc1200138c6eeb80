package fingerprint

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status reports the availability of the fingerprinting tool
type Status struct {
	// Candidates that were checked, in order
	Candidates []string
	// Available is true if one of the candidates was found
	Available bool
	// Path is the resolved path of the first candidate found
	Path string
	// Detail explains why no candidate was usable
	Detail string
}

// Check resolves the first usable tool from the ordered candidates given
func Check(candidates []string) Status {
	status := Status{Candidates: candidates}

	var missing []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		path, err := exec.LookPath(candidate)
		if err != nil {
			missing = append(missing, candidate)
			continue
		}

		status.Available = true
		status.Path = path
		return status
	}

	if len(missing) == 0 {
		status.Detail = "no tool configured"
	} else {
		status.Detail = fmt.Sprintf("none of %q found", missing)
	}
	return status
}
