package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

var frameExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// DirDevice replays the images in a directory, in file name order, as if they
// came from a camera.
type DirDevice struct {
	mu     sync.Mutex
	files  []string
	next   int
	seq    uint64
	loop   bool
	focus  float64
	closed bool
}

// OpenDir lists the image files in dir. With loop set the device starts over
// after the last file instead of reporting ErrEndOfStream.
func OpenDir(dir string, loop bool) (*DirDevice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Strings(files)

	return &DirDevice{files: files, loop: loop}, nil
}

// ReadFrame decodes the next file. A file that cannot be decoded is skipped and
// reported as ErrDeviceRead.
func (d *DirDevice) ReadFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Frame{}, fmt.Errorf("%w: device closed", ErrDeviceRead)
	}
	if d.next >= len(d.files) {
		if !d.loop {
			return Frame{}, ErrEndOfStream
		}
		d.next = 0
	}

	path := d.files[d.next]
	d.next++

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %s: %v", ErrDeviceRead, filepath.Base(path), err)
	}

	d.seq++
	return newFrame(d.seq, img), nil
}

// SetFocus records v; files have no focus.
func (d *DirDevice) SetFocus(v float64) error {
	d.mu.Lock()
	d.focus = v
	d.mu.Unlock()
	return nil
}

// Len returns the number of frames in one pass.
func (d *DirDevice) Len() int {
	return len(d.files)
}

func (d *DirDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
