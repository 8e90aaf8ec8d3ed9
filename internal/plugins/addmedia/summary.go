package addmedia

import (
	"os"
	"path/filepath"
	"strings"

	"bagger/internal/services"
)

// SummaryFilename is the media use summary's name both in staging and at the
// bag root.
const SummaryFilename = "media_use_summary.tsv"

// useSummary accumulates "filename<TAB>external URI" lines.
type useSummary struct {
	sb    strings.Builder
	lines int
}

func (s *useSummary) add(filename, externalURI string) {
	s.sb.WriteString(filename)
	s.sb.WriteByte('\t')
	s.sb.WriteString(externalURI)
	s.sb.WriteByte('\n')
	s.lines++
}

func (s *useSummary) String() string { return s.sb.String() }

// write stores the summary in stagingDir and returns its path. An empty
// summary still produces a file.
func (s *useSummary) write(stagingDir string) (string, error) {
	target := filepath.Join(stagingDir, SummaryFilename)
	if err := os.WriteFile(target, []byte(s.sb.String()), 0o644); err != nil {
		return "", services.Wrap(services.ErrFilesystem, stageName, "write summary", target, err)
	}
	return target, nil
}
