package gateway

import (
	"context"
	"testing"

	"github.com/Desarso/fitcoach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestPlaceQuery(t *testing.T) {
	q, err := PlaceQuery("gym")
	require.NoError(t, err)
	assert.Equal(t, "Find the best rated gyms near me", q)

	q, err = PlaceQuery("FOOD")
	require.NoError(t, err)
	assert.Equal(t, "Find healthy restaurants with high protein options near me", q)

	q, err = PlaceQuery("yoga studios")
	require.NoError(t, err)
	assert.Equal(t, "yoga studios", q)

	_, err = PlaceQuery("  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNearbyPlaces(t *testing.T) {
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		resp := textResponse("Here are some gyms.")
		resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
			GroundingChunks: []*genai.GroundingChunk{
				{Maps: &genai.GroundingChunkMaps{Title: "Iron Temple", URI: "https://maps.example/iron", PlaceID: "p1"}},
				{Web: &genai.GroundingChunkWeb{URI: "https://web.example/list"}},
				{Maps: &genai.GroundingChunkMaps{Title: "No link"}},
				nil,
				{},
			},
		}
		return resp, nil
	}}
	g, _ := newTestGateway(t, b)

	places, err := g.NearbyPlaces(context.Background(), "gym", models.GeoPoint{Latitude: 25.2, Longitude: 55.27})
	require.NoError(t, err)
	assert.Equal(t, []models.PlaceResult{
		{Title: "Iron Temple", URI: "https://maps.example/iron", PlaceID: "p1"},
		{Title: "Result", URI: "https://web.example/list"},
	}, places)

	call := b.lastCall(t)
	assert.Equal(t, "Find the best rated gyms near me", call.Contents[0].Parts[0].Text)
	require.Len(t, call.Config.Tools, 1)
	assert.NotNil(t, call.Config.Tools[0].GoogleMaps)
	latLng := call.Config.ToolConfig.RetrievalConfig.LatLng
	assert.Equal(t, 25.2, *latLng.Latitude)
	assert.Equal(t, 55.27, *latLng.Longitude)
}

func TestNearbyPlacesEmptyAndInvalid(t *testing.T) {
	g, _ := newTestGateway(t, &fakeBackend{})

	places, err := g.NearbyPlaces(context.Background(), "food", models.GeoPoint{})
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)

	_, err = g.NearbyPlaces(context.Background(), "food", models.GeoPoint{Latitude: 120})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
