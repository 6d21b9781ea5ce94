// internal/domain/catalog/images.go
package catalog

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageResolver maps a product's asset folder to the public paths of its
// images.
type ImageResolver struct {
	fsys      fs.FS
	urlPrefix string
}

// NewImageResolver creates a resolver reading products/<folder> from fsys.
// A nil fsys resolves every folder to no images.
func NewImageResolver(fsys fs.FS, urlPrefix string) *ImageResolver {
	return &ImageResolver{
		fsys:      fsys,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// Resolve lists the folder's image files sorted by name. A missing folder
// yields no images.
func (r *ImageResolver) Resolve(folder string) ([]string, error) {
	if r == nil || r.fsys == nil {
		return []string{}, nil
	}

	dir := path.Join("products", folder)
	entries, err := fs.ReadDir(r.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	images := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(e.Name()))] {
			continue
		}
		images = append(images, r.urlPrefix+"/"+path.Join(dir, e.Name()))
	}
	sort.Strings(images)
	return images, nil
}
