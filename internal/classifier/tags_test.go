package classifier_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/classifier"
	"github.com/stretchr/testify/assert"
)

func TestExtractTags(t *testing.T) {
	t.Parallel()

	tags := classifier.ExtractTags("The road has 2 big potholes near 123 Main Street", "a photo of a pothole")
	assert.Equal(t, []string{"road", "has", "big", "potholes", "near", "main", "street", "photo", "pothole"}, tags)
}

func TestExtractTags_LimitAndDedup(t *testing.T) {
	t.Parallel()

	tags := classifier.ExtractTags("one1 two2 three four five five six seven eight nine ten eleven twelve")
	assert.Len(t, tags, 10)
	assert.Equal(t, "one1", tags[0])
	assert.Equal(t, "ten", tags[9])
}

func TestExtractTags_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, classifier.ExtractTags("", "   ", "a an of"))
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{text: "सड़क पर गड्ढा है", want: classifier.LanguageHindi},
		{text: "road pe गड्ढा", want: classifier.LanguageHindi},
		{text: "sadak kharab hai", want: classifier.LanguageEnglish},
		{text: "12345 !!", want: classifier.LanguageUnknown},
		{text: "", want: classifier.LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifier.DetectLanguage(tt.text))
		})
	}
}
