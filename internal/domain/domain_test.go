package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemCategory_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Pothole / Road Damage", domain.PotholeRoadDamage.String())
	assert.Equal(t, "Public Transport Issue", domain.PublicTransport.String())
	assert.Equal(t, "Other Civic Issue", domain.Other.String())
	assert.Equal(t, "Other Civic Issue", domain.ProblemCategory(42).String())
	assert.Equal(t, "Other Civic Issue", domain.ProblemCategory(-1).String())
}

func TestCategories_DeclarationOrder(t *testing.T) {
	t.Parallel()

	cats := domain.Categories()
	require.Len(t, cats, 9)
	assert.Equal(t, domain.PotholeRoadDamage, cats[0])
	assert.Equal(t, domain.Other, cats[len(cats)-1])
}

func TestProblemCategory_TextRoundTrip(t *testing.T) {
	t.Parallel()

	var c domain.ProblemCategory
	require.NoError(t, c.UnmarshalText([]byte("Drainage Issue")))
	assert.Equal(t, domain.Drainage, c)

	require.Error(t, c.UnmarshalText([]byte("Volcano")))
}

func TestPriority_Rank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, domain.PriorityHigh.Rank())
	assert.Equal(t, 2, domain.PriorityMedium.Rank())
	assert.Equal(t, 3, domain.PriorityLow.Rank())
	assert.Equal(t, 2, domain.Priority("whatever").Rank())
}

func TestResponse_JSONShape(t *testing.T) {
	t.Parallel()

	resp := domain.Response{
		Success:    true,
		AnalysisID: "id-1",
		Data: &domain.ClassificationResult{
			Title:             "Drainage Problem",
			ProblemIdentified: domain.Drainage,
			Priority:          domain.PriorityMedium,
			AIConfidence:      domain.ConfidenceHigh,
		},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.NotContains(t, decoded, "error")

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Drainage Issue", data["problemIdentified"])
	assert.Equal(t, "MEDIUM", data["priority"])
	assert.Equal(t, "high", data["aiConfidence"])
}

func TestRequest_HasMedia(t *testing.T) {
	t.Parallel()

	assert.False(t, (&domain.Request{Text: "x"}).HasImage())
	assert.True(t, (&domain.Request{ImageData: "data:image/png;base64,AA=="}).HasImage())
	assert.True(t, (&domain.Request{Audio: []byte{1}}).HasAudio())
}
