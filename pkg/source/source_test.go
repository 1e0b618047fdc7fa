package source

import "testing"

func TestNewLocator(t *testing.T) {
	tests := []struct {
		template string
		valid    bool
	}{
		{"/articles/{id}.json", true},
		{"articles:{id}", true},
		{"{id}", true},
		{"/articles/latest.json", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := NewLocator(tt.template)
		if (err == nil) != tt.valid {
			t.Errorf("NewLocator(%q) error = %v, want valid=%v", tt.template, err, tt.valid)
		}
	}
}

func TestMustLocator_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLocator did not panic on a template without placeholder")
		}
	}()
	MustLocator("static.json")
}

func TestLocator_Resolve(t *testing.T) {
	l := MustLocator("/articles/{id}.json")

	if got := l.Resolve("news 1"); got != "/articles/news 1.json" {
		t.Errorf("Resolve = %q", got)
	}
	if got := l.ResolvePath("news 1"); got != "/articles/news%201.json" {
		t.Errorf("ResolvePath = %q", got)
	}
	if got := l.ResolvePath("a/b"); got != "/articles/a%2Fb.json" {
		t.Errorf("ResolvePath(a/b) = %q", got)
	}
	if l.String() != "/articles/{id}.json" {
		t.Errorf("String = %q", l.String())
	}
}
