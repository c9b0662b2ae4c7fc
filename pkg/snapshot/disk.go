package snapshot

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vango-dev/mini/internal/errors"
)

// DiskStore keeps snapshots as JSON files in a directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore, creating dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E140").WithDetailf("create %s", dir).Wrap(err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Put writes the snapshot to <dir>/<id>.json. The file is written to a
// temporary name first and renamed into place.
func (s *DiskStore) Put(ctx context.Context, snap *Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := encode(snap)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return "", errors.New("E140").Wrap(err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", errors.New("E140").Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.New("E140").Wrap(err)
	}
	if err := os.Rename(tmp, s.path(snap.ID)); err != nil {
		os.Remove(tmp)
		return "", errors.New("E140").Wrap(err)
	}
	return snap.ID, nil
}

// Get reads <dir>/<id>.json.
func (s *DiskStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("E141").WithDetailf("snapshot %s", id)
		}
		return nil, errors.New("E140").Wrap(err)
	}
	return decode(id, data)
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (s *DiskStore) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.New("E140").Wrap(err)
	}
	return nil
}
