package gateway

import (
	"context"
	"strings"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
	"google.golang.org/genai"
)

// PlaceQuery resolves a preset name ("gym", "food") to its query text.
// Any other non-empty text is used as the query itself.
func PlaceQuery(queryOrPreset string) (string, error) {
	q := strings.TrimSpace(queryOrPreset)
	if q == "" {
		return "", invalidInput("place query is required")
	}
	if preset, ok := placePresets[strings.ToLower(q)]; ok {
		return preset, nil
	}
	return q, nil
}

// NearbyPlaces answers query with Google Maps grounding around loc and
// returns every grounded place or web result that carries a link.
func (g *Gateway) NearbyPlaces(ctx context.Context, query string, loc models.GeoPoint) ([]models.PlaceResult, error) {
	query, err := PlaceQuery(query)
	if err != nil {
		return nil, err
	}
	if !loc.Valid() {
		return nil, invalidInput("location %v,%v is out of range", loc.Latitude, loc.Longitude)
	}

	lat, lng := loc.Latitude, loc.Longitude
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: &lat, Longitude: &lng},
			},
		},
	}

	places := []models.PlaceResult{}
	err = g.call(ctx, "places", "", g.models.Fast, map[string]any{"query": query}, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Fast, genai.Text(query), config)
		if err != nil {
			return err
		}
		places = append(places, placesFromChunks(gemini.GroundingChunks(resp))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return places, nil
}

func placesFromChunks(chunks []*genai.GroundingChunk) []models.PlaceResult {
	var out []models.PlaceResult
	for _, c := range chunks {
		if c == nil {
			continue
		}
		var p models.PlaceResult
		switch {
		case c.Web != nil && c.Web.URI != "":
			p = models.PlaceResult{Title: c.Web.Title, URI: c.Web.URI}
			if p.Title == "" && c.Maps != nil {
				p.Title = c.Maps.Title
			}
		case c.Maps != nil && c.Maps.URI != "":
			p = models.PlaceResult{Title: c.Maps.Title, URI: c.Maps.URI, PlaceID: c.Maps.PlaceID}
		default:
			continue
		}
		if p.Title == "" {
			p.Title = defaultPlaceTitle
		}
		out = append(out, p)
	}
	return out
}
