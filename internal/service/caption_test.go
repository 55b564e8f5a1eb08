package service

import (
	"reflect"
	"testing"
)

func TestParseReply(t *testing.T) {
	testCases := []struct {
		name         string
		content      string
		wantCaption  string
		wantKeywords []string
	}{
		{
			name:         "well formed reply",
			content:      "CAPTION: Sunset over bay | KEYWORDS: bay, sunset, water",
			wantCaption:  "Sunset over bay",
			wantKeywords: []string{"bay", "sunset", "water"},
		},
		{
			name:         "exact contract form",
			content:      "CAPTION: X | KEYWORDS: a, b, c",
			wantCaption:  "X",
			wantKeywords: []string{"a", "b", "c"},
		},
		{
			name:         "missing keywords marker",
			content:      "CAPTION: A lone tree stands in fog",
			wantCaption:  "A lone tree stands in fog",
			wantKeywords: []string{},
		},
		{
			name:         "missing both markers",
			content:      "Here is a lovely description of your photo.",
			wantCaption:  PlaceholderCaption,
			wantKeywords: []string{},
		},
		{
			name:         "lowercase markers accepted",
			content:      "caption: Dogs play in surf | keywords: dog, beach",
			wantCaption:  "Dogs play in surf",
			wantKeywords: []string{"dog", "beach"},
		},
		{
			name:         "whitespace and empty entries trimmed",
			content:      "CAPTION:  Trimmed caption  | KEYWORDS:  a , , b ,",
			wantCaption:  "Trimmed caption",
			wantKeywords: []string{"a", "b"},
		},
		{
			name:         "multiline reply",
			content:      "Sure!\nCAPTION: City lights at dusk | KEYWORDS: city,\nnight, skyline",
			wantCaption:  "City lights at dusk",
			wantKeywords: []string{"city", "night", "skyline"},
		},
		{
			name:         "keywords only",
			content:      "KEYWORDS: a, b",
			wantCaption:  PlaceholderCaption,
			wantKeywords: []string{"a", "b"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseReply(tc.content)
			if got.Caption != tc.wantCaption {
				t.Errorf("caption = %q, want %q", got.Caption, tc.wantCaption)
			}
			if !reflect.DeepEqual(got.Keywords, tc.wantKeywords) {
				t.Errorf("keywords = %v, want %v", got.Keywords, tc.wantKeywords)
			}
		})
	}
}
