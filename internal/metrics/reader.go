package metrics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadTail returns the last n transitions of a history file, oldest first.
// Malformed lines are skipped; n <= 0 returns every entry.
func ReadTail(path string, n int) ([]Transition, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var out []Transition
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var t Transition
		if err := json.Unmarshal(scanner.Bytes(), &t); err != nil {
			continue
		}
		out = append(out, t)
		if n > 0 && len(out) > n {
			out = out[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}
