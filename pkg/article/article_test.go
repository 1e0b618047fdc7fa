package article

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantID  string
	}{
		{
			name:   "complete document",
			doc:    `{"id":"news-1","title":"Hello","excerpt":"e","image":"/img/1.png","date":"2024-03-01T10:00:00Z","category":"Tech"}`,
			wantID: "news-1",
		},
		{
			name:   "date only",
			doc:    `{"id":"news-2","title":"Hello","date":"2024-03-01"}`,
			wantID: "news-2",
		},
		{
			name:   "missing title is kept",
			doc:    `{"id":"news-3","date":"2024-03-01"}`,
			wantID: "news-3",
		},
		{
			name:   "empty title and id are kept",
			doc:    `{"id":"","title":"","date":"2024-03-01"}`,
			wantID: "",
		},
		{
			name:    "missing date",
			doc:     `{"id":"news-5","title":"x"}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "bad date",
			doc:     `{"id":"news-4","title":"x","date":"yesterday"}`,
			wantErr: ErrBadDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.doc))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if a.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", a.ID, tt.wantID)
			}
			if a.Published.IsZero() {
				t.Error("Published was not set")
			}
		})
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"id":`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestValidate_MissingDate(t *testing.T) {
	a := Article{ID: "news-1", Title: "Hello"}
	err := a.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() error = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "date") {
		t.Errorf("error %q does not mention date", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00.5Z", time.Date(2024, 3, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{"2024-03-01T12:00:00+02:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{" 2024-03-01 ", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestArticle_PublishedNotSerialized(t *testing.T) {
	a, err := Decode([]byte(`{"id":"a","title":"t","date":"2024-01-01"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(out), "Published") {
		t.Errorf("Published leaked into JSON: %s", out)
	}
	if !strings.Contains(string(out), `"date":"2024-01-01"`) {
		t.Errorf("date not kept verbatim: %s", out)
	}
}
