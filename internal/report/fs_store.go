package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ext = ".json"

// FSStore stores each report as <baseDir>/reports/<name>.json. Writes go
// through a temp file and a rename so readers never see a partial report.
type FSStore struct {
	baseDir string
	log     *zap.Logger
}

// NewFSStore creates a filesystem store rooted at baseDir, creating the
// directory if needed.
func NewFSStore(baseDir string, logger *zap.Logger) (*FSStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(baseDir, "reports"), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create report directory")
	}
	return &FSStore{baseDir: baseDir, log: logger.Named("report")}, nil
}

func (fs *FSStore) path(name string) string {
	return filepath.Join(fs.baseDir, "reports", name+ext)
}

// Save atomically writes r under name.
func (fs *FSStore) Save(name string, r *Report) error {
	if r == nil {
		return errors.New("report cannot be nil")
	}
	if !ValidName(name) {
		return errors.Errorf("invalid report name %q", name)
	}
	r.Name = name
	if err := r.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize report")
	}

	tmp, err := os.CreateTemp(filepath.Join(fs.baseDir, "reports"), "."+name+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp report file")
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to write temp report file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to close temp report file")
	}

	finalPath := fs.path(name)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to rename report file")
	}

	fs.log.Debug("report saved", zap.String("name", name), zap.String("path", finalPath))
	return nil
}

// Load reads the named report.
func (fs *FSStore) Load(name string) (*Report, error) {
	if !ValidName(name) {
		return nil, &NotFoundError{Name: name}
	}

	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Name: name}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report file")
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize report %s", name)
	}
	return &r, nil
}

// List returns metadata for every readable report. Corrupt files are
// skipped with a warning.
func (fs *FSStore) List() ([]Info, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, "reports"))
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report directory")
	}

	infos := []Info{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		r, err := fs.Load(name)
		if err != nil {
			fs.log.Warn("failed to load report for listing", zap.String("name", name), zap.Error(err))
			continue
		}
		infos = append(infos, r.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	fs.log.Debug("listed reports", zap.Int("count", len(infos)))
	return infos, nil
}

// Delete removes the named report.
func (fs *FSStore) Delete(name string) error {
	if !ValidName(name) {
		return &NotFoundError{Name: name}
	}

	err := os.Remove(fs.path(name))
	if os.IsNotExist(err) {
		return &NotFoundError{Name: name}
	}
	if err != nil {
		return errors.Wrap(err, "failed to remove report file")
	}

	fs.log.Debug("report deleted", zap.String("name", name))
	return nil
}
