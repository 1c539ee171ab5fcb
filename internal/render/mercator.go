package render

import "math"

const (
	// TileSize is the pixel edge of one slippy tile.
	TileSize = 256
	// MaxLat is the web-mercator latitude limit.
	MaxLat = 85.05112878
)

func worldSize(zoom float64) float64 { return TileSize * math.Exp2(zoom) }

// Project maps lon/lat to world pixel coordinates at zoom. y grows south.
func Project(lon, lat, zoom float64) (x, y float64) {
	lat = math.Max(-MaxLat, math.Min(MaxLat, lat))
	s := worldSize(zoom)
	x = (lon + 180) / 360 * s
	rad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * s
	return x, y
}

// Unproject is the inverse of Project.
func Unproject(x, y, zoom float64) (lon, lat float64) {
	s := worldSize(zoom)
	lon = x/s*360 - 180
	n := math.Pi - 2*math.Pi*y/s
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))
	return lon, lat
}

// LonToTile returns the slippy tile column containing lon at zoom z.
func LonToTile(lon float64, z int) int {
	n := 1 << z
	return clampTile(int(math.Floor((lon+180)/360*float64(n))), n)
}

// LatToTile returns the slippy tile row containing lat at zoom z.
func LatToTile(lat float64, z int) int {
	n := 1 << z
	lat = math.Max(-MaxLat, math.Min(MaxLat, lat))
	rad := lat * math.Pi / 180
	t := (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * float64(n)
	return clampTile(int(math.Floor(t)), n)
}

func clampTile(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Tile identifies a slippy map tile.
type Tile struct {
	Z, X, Y int
}
