package snapshot

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/vango-dev/mini/internal/errors"
)

// Store persists snapshots.
type Store interface {
	// Put stores s and returns its id.
	Put(ctx context.Context, s *Snapshot) (string, error)

	// Get loads the snapshot with the given id. A missing snapshot is
	// reported as an E141 error.
	Get(ctx context.Context, id string) (*Snapshot, error)
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// checkID rejects ids that could escape a directory or key prefix.
func checkID(id string) error {
	if !validID.MatchString(id) {
		return errors.New("E141").WithDetailf("invalid snapshot id %q", id)
	}
	return nil
}

func encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("E140").WithDetail("nil snapshot")
	}
	if s.ID == "" {
		return nil, errors.New("E140").WithDetail("snapshot has no id")
	}
	if err := checkID(s.ID); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	return data, nil
}

func decode(id string, data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New("E140").WithDetailf("snapshot %s is corrupt", id).Wrap(err)
	}
	return &s, nil
}

// IsNotFound reports whether err means the snapshot does not exist.
func IsNotFound(err error) bool {
	return errors.HasCode(err, "E141")
}
