package recording

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/miretskiy/mm1ksim/simulator"
)

// DefaultLineFile is where runs are appended when no path is given
const DefaultLineFile = "out.csv"

// LineFile appends one "<meanCount> <meanSojourn> <lossRate>" line per run to
// a text file. Existing content is never truncated.
type LineFile struct {
	path string
	mu   sync.Mutex
}

// NewLineFile returns a sink appending to path (DefaultLineFile if empty)
func NewLineFile(path string) *LineFile {
	if path == "" {
		path = DefaultLineFile
	}
	return &LineFile{path: path}
}

// Path returns the file being appended to
func (f *LineFile) Path() string {
	return f.path
}

// Write appends the empirical metrics of result
func (f *LineFile) Write(result simulator.RunResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}

	line := FormatLine(result.Empirical)
	if _, err := file.WriteString(line); err != nil {
		file.Close()
		return fmt.Errorf("append to %s: %w", f.path, err)
	}
	return file.Close()
}

// FormatLine renders the three empirical metrics space separated, newline
// terminated, each in its shortest exact decimal form
func FormatLine(s simulator.Summary) string {
	return formatFloat(s.MeanCount) + " " +
		formatFloat(s.MeanSojourn) + " " +
		formatFloat(s.LossRate) + "\n"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
