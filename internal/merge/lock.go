package merge

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
)

// ErrLocked is returned when another writer holds a template's lock.
var ErrLocked = errors.New("template is locked by another writer")

const lockSuffix = ".lock"

// fileLock is an advisory lock file next to a template.
type fileLock struct {
	path  string
	token string
}

// acquireLock creates path+".lock" exclusively. The lock file holds a
// random token so release never removes a lock taken over by someone else.
func acquireLock(path string) (*fileLock, error) {
	l := &fileLock{path: path + lockSuffix, token: uuid.NewString()}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, l.path)
		}

		return nil, fmt.Errorf("creating lock %s: %w", l.path, err)
	}

	_, err = f.WriteString(l.token)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(l.path)
		return nil, fmt.Errorf("writing lock %s: %w", l.path, err)
	}

	return l, nil
}

func (l *fileLock) release() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("reading lock %s: %w", l.path, err)
	}

	if !bytes.Equal(data, []byte(l.token)) {
		return fmt.Errorf("lock %s no longer belongs to this writer", l.path)
	}

	return os.Remove(l.path)
}
