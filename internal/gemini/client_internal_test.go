//nolint:testpackage // exercises the unexported generator seam
package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestCaption(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{resp: textResponse("A road with ", "a deep pothole. ")}
	c := &Client{models: gen, model: "gemini-test"}
	image := testhelpers.PNG(t)

	caption, err := c.Caption(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "A road with a deep pothole.", caption)
	assert.Equal(t, "gemini-test", gen.model)

	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, image, parts[0].InlineData.Data)
	assert.Equal(t, captionInstruction, parts[1].Text)
}

func TestCaptionWithPrompt(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{resp: textResponse("a flooded street")}
	c := &Client{models: gen, model: "m"}

	_, err := c.CaptionWithPrompt(context.Background(), []byte{1, 2}, "a photo of a problem in the city: ")
	require.NoError(t, err)
	assert.Contains(t, gen.contents[0].Parts[1].Text, "a photo of a problem in the city:")
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{resp: textResponse("paani nahi aa raha")}
	c := &Client{models: gen, model: "m"}

	text, err := c.Transcribe(context.Background(), testhelpers.WAV())
	require.NoError(t, err)
	assert.Equal(t, "paani nahi aa raha", text)
	assert.Contains(t, gen.contents[0].Parts[0].InlineData.MIMEType, "wav")
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  *fakeGenerator
		want error
	}{
		{name: "api error", gen: &fakeGenerator{err: errors.New("quota")}},
		{name: "no candidates", gen: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, want: ErrNoCandidates},
		{name: "nil content", gen: &fakeGenerator{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}}, want: ErrNoCandidates},
		{name: "blank text", gen: &fakeGenerator{resp: textResponse("  ")}, want: ErrNoCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &Client{models: tt.gen, model: "m"}
			_, err := c.Caption(context.Background(), []byte{1})
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "", "m")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
