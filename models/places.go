package models

// GeoPoint is a best-effort location reading from the client.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (g GeoPoint) Valid() bool {
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

type PlaceResult struct {
	Title   string `json:"title"`
	URI     string `json:"uri"`
	PlaceID string `json:"placeId,omitempty"`
}

// Source is a web citation returned by a search-grounded answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}
