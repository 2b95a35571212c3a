package quotes

import "testing"

func TestParseQuoteTitle(t *testing.T) {
	tests := []struct {
		title      string
		wantText   string
		wantAuthor string
		wantOK     bool
	}{
		{`"Stay hungry, stay foolish." - Steve Jobs`, "Stay hungry, stay foolish.", "Steve Jobs", true},
		{`“Be yourself; everyone else is already taken.” ― Oscar Wilde [Image]`, "Be yourself; everyone else is already taken.", "Oscar Wilde", true},
		{`"Hell is other people." — Jean-Paul Sartre`, "Hell is other people.", "Jean-Paul Sartre", true},
		{`"A well-known line" ~ Anonymous (OC)`, "A well-known line", "Anonymous", true},
		{`What is your favorite quote?`, "", "", false},
		{`"" - Nobody`, "", "", false},
	}

	for _, tt := range tests {
		q, ok := ParseQuoteTitle(tt.title)
		if ok != tt.wantOK {
			t.Errorf("ParseQuoteTitle(%q) ok = %v, expected %v", tt.title, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if q.Text != tt.wantText {
			t.Errorf("ParseQuoteTitle(%q) text = %q, expected %q", tt.title, q.Text, tt.wantText)
		}
		if q.Author != tt.wantAuthor {
			t.Errorf("ParseQuoteTitle(%q) author = %q, expected %q", tt.title, q.Author, tt.wantAuthor)
		}
	}
}
