// Package shaders maps compiled SPIR-V files into memory for shader module
// creation.
package shaders

import (
	"context"
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/triangle/apperr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Blob is a read-only private mapping of a shader binary. It stays valid until
// Close.
type Blob struct {
	Path string
	data []byte
}

// Map opens path and maps its bytes read-only. The file descriptor is closed
// before returning; the mapping outlives it.
func Map(path string) (*Blob, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.Posix("open", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, apperr.Posix("stat", path, err)
	}

	// An empty file is left to mmap, which refuses a zero length.
	size := stat.Size()
	if size%4 != 0 {
		return nil, apperr.App("shader %s: size %d is not a whole number of SPIR-V words", path, size)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, apperr.Posix("mmap", path, err)
	}

	return &Blob{Path: path, data: data}, nil
}

// Len is the size of the mapping in bytes.
func (b *Blob) Len() int {
	return len(b.data)
}

// Words views the mapping as SPIR-V words without copying. mmap returns page
// aligned memory, so the reinterpretation is safe; the slice must not be used
// after Close.
func (b *Blob) Words() []uint32 {
	if len(b.data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.data[0])), len(b.data)/4)
}

// Close releases the mapping. It is safe to call more than once.
func (b *Blob) Close() error {
	if b == nil || b.data == nil {
		return nil
	}

	err := unix.Munmap(b.data)
	b.data = nil
	if err != nil {
		return apperr.Posix("munmap", b.Path, err)
	}
	return nil
}

// Pair holds the vertex and fragment stages of the triangle.
type Pair struct {
	Vertex   *Blob
	Fragment *Blob
}

// LoadPair maps both shader files concurrently. If either fails, or ctx is done
// first, whichever one did map is released before the error is returned.
func LoadPair(ctx context.Context, vertexPath, fragmentPath string) (*Pair, error) {
	return loadPair(ctx, Map, vertexPath, fragmentPath)
}

func loadPair(ctx context.Context, mapFile func(string) (*Blob, error), vertexPath, fragmentPath string) (*Pair, error) {
	pair := &Pair{}
	group, groupCtx := errgroup.WithContext(ctx)

	load := func(path string, stage **Blob) func() error {
		return func() error {
			if err := groupCtx.Err(); err != nil {
				return errors.Wrapf(err, "map %s", path)
			}
			blob, err := mapFile(path)
			*stage = blob
			return err
		}
	}
	group.Go(load(vertexPath, &pair.Vertex))
	group.Go(load(fragmentPath, &pair.Fragment))

	if err := group.Wait(); err != nil {
		pair.Close()
		return nil, err
	}

	return pair, nil
}

// Close unmaps both stages.
func (p *Pair) Close() error {
	vertErr := p.Vertex.Close()
	fragErr := p.Fragment.Close()
	if vertErr != nil {
		return vertErr
	}
	return fragErr
}
