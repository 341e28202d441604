package workspace

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/langsvc"
)

var log = commonlog.GetLogger("jfxbuilder.workspace")

// Store reads and writes Java files on disk. Open documents shadow the
// file content, and every write is pushed to the language service so its
// diagnostics follow the file.
type Store struct {
	Documents *Documents
	Syncer    langsvc.DocumentSyncer
}

func (s *Store) ReadFile(path string) ([]byte, error) {
	if s.Documents != nil {
		if doc, ok := s.Documents.Get(langsvc.PathToURI(path)); ok {
			return []byte(doc.Text), nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

func (s *Store) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	uri := langsvc.PathToURI(path)
	if s.Documents != nil {
		if doc, ok := s.Documents.Get(uri); ok {
			s.Documents.Update(uri, string(data), doc.Version+1)
		}
	}
	if s.Syncer != nil {
		if err := s.Syncer.SyncDocument(ctx, uri, string(data)); err != nil {
			return errors.Wrapf(err, "syncing %s", path)
		}
	}
	log.Debug("file written", "path", path, "bytes", len(data))
	return nil
}

func (s *Store) MkdirAll(path string) error {
	return errors.Wrapf(os.MkdirAll(path, 0o755), "creating %s", path)
}

func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
