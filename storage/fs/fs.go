package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/larrabee/s3publish/storage"
)

// DefaultFilterNames contains file names which are never published.
var DefaultFilterNames = []string{".DS_Store"}

// FSStorage configuration.
type FSStorage struct {
	dir         string
	bufSize     int
	filterNames map[string]struct{}
	ctx         context.Context
}

// NewFSStorage return new configured FS storage.
//
// Files whose base name is in filterNames are never listed.
// You should always create new storage with this constructor.
func NewFSStorage(dir string, bufSize int, filterNames []string) *FSStorage {
	st := FSStorage{
		dir:         filepath.Clean(dir) + string(filepath.Separator),
		filterNames: make(map[string]struct{}, len(filterNames)),
		ctx:         context.TODO(),
	}

	for _, name := range filterNames {
		st.filterNames[name] = struct{}{}
	}

	if bufSize < godirwalk.MinimumScratchBufferSize {
		st.bufSize = godirwalk.MinimumScratchBufferSize
	} else {
		st.bufSize = bufSize
	}
	return &st
}

// WithContext add's context to storage.
func (st *FSStorage) WithContext(ctx context.Context) {
	st.ctx = ctx
}

// List walks FS and send founded regular files to chan.
//
// Directories and filtered names are not sent. Sending stops when the storage context is done.
func (st *FSStorage) List(output chan<- *storage.Object) error {
	send := func(path string) error {
		key := st.key(path)
		select {
		case output <- &storage.Object{Key: &key}:
			return nil
		case <-st.ctx.Done():
			return st.ctx.Err()
		}
	}

	listObjectsFn := func(path string, de *godirwalk.Dirent) error {
		select {
		case <-st.ctx.Done():
			return st.ctx.Err()
		default:
		}

		// A filtered directory name is walked into, only the entry itself is dropped.
		if _, ok := st.filterNames[de.Name()]; ok && !de.IsDir() {
			return nil
		}

		if de.IsRegular() {
			return send(path)
		}
		if de.IsSymlink() {
			pathTarget, err := filepath.EvalSymlinks(path)
			if err != nil {
				return err
			}
			symStat, err := os.Stat(pathTarget)
			if err != nil {
				return err
			}
			if symStat.Mode().IsRegular() {
				return send(path)
			}
		}
		return nil
	}

	err := godirwalk.Walk(st.dir, &godirwalk.Options{
		FollowSymbolicLinks: true,
		ScratchBuffer:       make([]byte, st.bufSize),
		Callback:            listObjectsFn,
	})
	if err != nil {
		return err
	}
	storage.Log.Debugf("Listing dir %s finished", st.dir)
	return nil
}

// key strips the root prefix, leaving a slash separated key without leading separator.
func (st *FSStorage) key(path string) string {
	return filepath.ToSlash(strings.TrimPrefix(path, st.dir))
}

// GetObjectContent read object content and metadata from FS.
func (st *FSStorage) GetObjectContent(obj *storage.Object) error {
	destPath := filepath.Join(st.dir, filepath.FromSlash(*obj.Key))
	f, err := os.Open(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	dataSize := int64(len(data))
	obj.Content = &data
	obj.ContentLength = &dataSize

	if obj.Mtime == nil {
		fileInfo, err := f.Stat()
		if err != nil {
			return err
		}
		mtime := fileInfo.ModTime()
		obj.Mtime = &mtime
	}
	return nil
}

// GetObjectMeta update object size and modification time from FS.
func (st *FSStorage) GetObjectMeta(obj *storage.Object) error {
	destPath := filepath.Join(st.dir, filepath.FromSlash(*obj.Key))
	fileInfo, err := os.Stat(destPath)
	if err != nil {
		return err
	}

	mtime := fileInfo.ModTime()
	size := fileInfo.Size()
	obj.Mtime = &mtime
	obj.ContentLength = &size
	return nil
}
