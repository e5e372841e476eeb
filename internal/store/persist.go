package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

const backupStamp = "20060102_150405"

// BackupPaths returns the rolling and archival backup paths for a backup
// taken at stamp (formatted as YYYYMMDD_HHMMSS).
func (s *Store) BackupPaths(stamp string) (rolling, archival string) {
	base := filepath.Base(s.cfg.DocumentPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".yml"
	}
	rolling = filepath.Join(s.cfg.BackupDir, base+".backup")
	archival = filepath.Join(s.cfg.BackupDir, stem+"_"+stamp+ext+".backup")
	return rolling, archival
}

// backup writes the pre-mutation bytes to both backup files.
func (s *Store) backup(op string, data []byte) error {
	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return model.Wrap(model.CodePersistence, op, err, "create backup dir %s", s.cfg.BackupDir)
	}
	rolling, archival := s.BackupPaths(s.clock.Now().Format(backupStamp))
	for _, path := range []string{rolling, archival} {
		if err := s.writeFile(path, data, 0o644); err != nil {
			return model.Wrap(model.CodePersistence, op, err, "write backup %s", path)
		}
	}
	s.log.Debug().Str("op", op).Str("rolling", rolling).Str("archival", archival).Msg("backup written")
	return nil
}

// persist encodes doc and atomically replaces the document file, keeping
// its permissions.
func (s *Store) persist(op string, doc *model.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return model.Wrap(model.CodeInternal, op, err, "encode document")
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(s.cfg.DocumentPath); err == nil {
		perm = info.Mode().Perm()
	}
	if err := s.writeFile(s.cfg.DocumentPath, data, perm); err != nil {
		return model.Wrap(model.CodePersistence, op, err, "write %s", s.cfg.DocumentPath)
	}
	return nil
}
