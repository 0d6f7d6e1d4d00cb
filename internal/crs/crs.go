// Package crs converts points between the Polish national grid
// (PUWG 1992, EPSG:2180) and geographic WGS84 (EPSG:4326).
package crs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
)

// PROJ definitions of the two reference systems.
const (
	EPSG2180 = "+proj=tmerc +lat_0=0 +lon_0=19 +k=0.9993 +x_0=500000 +y_0=-5300000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs"
	EPSG4326 = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"
)

// DefaultMapURL is the map viewer template. {lat} and {lon} are replaced
// with decimal degrees.
const DefaultMapURL = "https://www.google.com/maps?q={lat},{lon}"

// Projector converts between EPSG:2180 and EPSG:4326. The zero value is not
// usable; call NewProjector.
type Projector struct {
	forward proj.Transformer
	inverse proj.Transformer
}

// NewProjector parses both reference systems and builds the transforms.
func NewProjector() (*Projector, error) {
	src, err := proj.Parse(EPSG2180)
	if err != nil {
		return nil, fmt.Errorf("crs: parsing EPSG:2180: %v", err)
	}
	dst, err := proj.Parse(EPSG4326)
	if err != nil {
		return nil, fmt.Errorf("crs: parsing EPSG:4326: %v", err)
	}
	fwd, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("crs: creating forward transform: %v", err)
	}
	inv, err := dst.NewTransform(src)
	if err != nil {
		return nil, fmt.Errorf("crs: creating inverse transform: %v", err)
	}
	return &Projector{forward: fwd, inverse: inv}, nil
}

// ToWGS84 converts a grid point (x easting, y northing) to latitude and
// longitude in degrees.
func (p *Projector) ToWGS84(x, y float64) (lat, lon float64, err error) {
	lon, lat, err = p.forward(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("crs: projecting (%v, %v): %w", x, y, err)
	}
	return lat, lon, nil
}

// FromWGS84 converts latitude and longitude in degrees back to grid
// coordinates.
func (p *Projector) FromWGS84(lat, lon float64) (x, y float64, err error) {
	x, y, err = p.inverse(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("crs: projecting (%v, %v): %w", lat, lon, err)
	}
	return x, y, nil
}

// MapURL fills template with lat and lon. An empty template means
// DefaultMapURL.
func MapURL(template string, lat, lon float64) (string, error) {
	if template == "" {
		template = DefaultMapURL
	}
	s := strings.NewReplacer(
		"{lat}", strconv.FormatFloat(lat, 'f', -1, 64),
		"{lon}", strconv.FormatFloat(lon, 'f', -1, 64),
	).Replace(template)
	if _, err := url.Parse(s); err != nil {
		return "", fmt.Errorf("crs: bad map url %q: %w", s, err)
	}
	return s, nil
}
