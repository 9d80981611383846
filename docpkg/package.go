// Package docpkg reads WordprocessingML packages and resolves part
// relationships.
package docpkg

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	fixzip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
)

// ErrPartNotFound is returned by ReadPart when the requested part is absent
// from the container.
var ErrPartNotFound = errors.New("part not found in package")

// Package is an open document container. Part names are case sensitive and
// use forward slashes without a leading slash, as stored in the archive.
type Package struct {
	name  string
	rc    *fixzip.ReadCloser
	parts map[string]*fixzip.File
}

// Open opens the container at path. Entries with path traversal components
// ("..") or absolute paths are rejected to prevent Zip Slip attacks.
func Open(name string) (*Package, error) {

	rc, err := fixzip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open package %q: %w", name, err)
	}

	pkg := &Package{
		name:  name,
		rc:    rc,
		parts: make(map[string]*fixzip.File),
	}
	for _, f := range rc.File {
		entry := f.FileHeader.Name
		if !isSafePath(entry) {
			rc.Close()
			return nil, fmt.Errorf("package entry %q: unsafe path (absolute or contains path traversal)", entry)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		pkg.parts[entry] = f
	}
	return pkg, nil
}

// Name returns path the package was opened from.
func (p *Package) Name() string {
	return p.name
}

// ReadPart returns full content of the named part.
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.parts[normalizePartName(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPartNotFound)
	}

	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open part %q: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read part %q: %w", name, err)
	}
	return data, nil
}

// HasPart reports whether the named part exists in the container.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[normalizePartName(name)]
	return ok
}

// Parts returns all part names in natural order.
func (p *Package) Parts() []string {
	names := make([]string, 0, len(p.parts))
	for name := range p.parts {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

func (p *Package) Close() error {
	if p == nil || p.rc == nil {
		return nil
	}
	return p.rc.Close()
}

// normalizePartName strips the leading slash some producers use in part
// references.
func normalizePartName(name string) string {
	return strings.TrimPrefix(name, "/")
}

// isSafePath returns false for paths that could escape an extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
