package geom

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnsupported is returned for files with an unknown extension.
var ErrUnsupported = eris.New("unsupported dataset format")

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".csv", ".kml", ".shp":
		return true
	}
	return false
}

// Load reads a dataset, choosing the decoder by extension.
func Load(path string) (*Collection, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".shp":
		return LoadShapefile(path)
	}
	return nil, eris.Wrapf(ErrUnsupported, "load %s", path)
}

// LoadDir loads every supported file in dir, keyed by base name without
// extension. Subdirectories are not descended.
func LoadDir(dir string) (map[string]*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read dir %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	out := make(map[string]*Collection, len(names))
	for _, name := range names {
		c, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[c.Name] = c
	}
	if len(out) == 0 {
		return nil, eris.Errorf("no datasets in %s", dir)
	}
	return out, nil
}
