package icons

import (
	"errors"
	"image"
	"io/fs"
	"sync"
	"testing/fstest"
)

const plainSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path fill="#ff0000" d="M0 0h24v24H0z"/></svg>`

// countingFS records how often each file's contents are read.
type countingFS struct {
	fstest.MapFS
	mu    sync.Mutex
	reads map[string]int
}

func newCountingFS(files ...string) *countingFS {
	m := fstest.MapFS{}
	for _, f := range files {
		m[f] = &fstest.MapFile{Data: []byte(plainSVG)}
	}
	return &countingFS{MapFS: m, reads: map[string]int{}}
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
	return c.MapFS.ReadFile(name)
}

func (c *countingFS) Reads(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name]
}

var _ fs.ReadFileFS = (*countingFS)(nil)

// recordingRasterizer captures the markup it was given and returns a blank
// image of the requested size.
type recordingRasterizer struct {
	mu     sync.Mutex
	calls  int
	markup []byte
	fail   bool
}

func (r *recordingRasterizer) Rasterize(markup []byte, size int) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.markup = append([]byte(nil), markup...)
	if r.fail {
		return nil, errors.New("boom")
	}
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

func (r *recordingRasterizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
