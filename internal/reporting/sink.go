package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"fund-momentum-lab/internal/observability"
)

// Sink writes rendered outputs into a directory, creating it on first use.
type Sink struct {
	dir string
	log zerolog.Logger
}

// NewSink creates a Sink rooted at dir.
func NewSink(dir string, log zerolog.Logger) *Sink {
	return &Sink{dir: dir, log: log}
}

// Write stores content under name inside the sink directory.
func (s *Sink) Write(name, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	s.log.Info().Str("path", path).Msg("wrote output file")
	observability.RecordReportWritten()
	return nil
}
