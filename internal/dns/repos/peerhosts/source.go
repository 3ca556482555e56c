package peerhosts

import (
	"fmt"
	"os"

	logpkg "github.com/haukened/nodar/internal/dns/common/log"
)

// FileSource reads the peer host list from a file on every Load.
type FileSource struct {
	path   string
	max    int
	logger logpkg.Logger
}

// NewFileSource returns a FileSource for path keeping at most max hosts.
func NewFileSource(path string, max int, logger logpkg.Logger) *FileSource {
	if max <= 0 {
		max = DefaultMaxHosts
	}
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	return &FileSource{path: path, max: max, logger: logger}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and parses the host file. On any failure it returns an empty,
// non-nil list together with the reason.
func (s *FileSource) Load() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return []string{}, fmt.Errorf("failed to open host list %s: %w", s.path, err)
	}
	defer f.Close()

	hosts, err := ParseHostList(f, s.max, s.logger)
	if err != nil {
		return []string{}, fmt.Errorf("failed to read host list %s: %w", s.path, err)
	}
	s.logger.Debug(map[string]any{"path": s.path, "count": len(hosts)}, "peer hosts loaded")
	return hosts, nil
}
