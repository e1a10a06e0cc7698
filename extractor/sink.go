package extractor

import (
	"os"
	"sync"
)

// FailureSink receives the rendered document when an extraction yields no
// market field at all, so a human can inspect why nothing matched. Capture
// is best-effort: its error is logged by the orchestrator, never surfaced.
type FailureSink interface {
	Capture(url, renderedHTML string) error
}

// FileSink writes the failing document to a fixed-name file, overwriting
// the previous capture. Only the most recent failure is kept.
type FileSink struct {
	Path string
}

func (s FileSink) Capture(_ string, renderedHTML string) error {
	return os.WriteFile(s.Path, []byte(renderedHTML), 0o644)
}

// MemorySink records captures in memory. Used by tests to assert the
// diagnostic side effect without touching the filesystem.
type MemorySink struct {
	mu       sync.Mutex
	captures []string
}

func (s *MemorySink) Capture(_ string, renderedHTML string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures = append(s.captures, renderedHTML)
	return nil
}

// Count returns how many documents were captured.
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.captures)
}

// Last returns the most recent capture, or "".
func (s *MemorySink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.captures) == 0 {
		return ""
	}
	return s.captures[len(s.captures)-1]
}
