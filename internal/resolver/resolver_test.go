package resolver

import (
	"testing"

	"github.com/valpere/argobridge/internal/capability"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		langs     []capability.Language
		source    string
		targets   []string
		opts      []Option
		want      string
		wantFound bool
	}{
		{
			name:      "concrete source is passed through",
			langs:     nil,
			source:    "xx",
			targets:   []string{"fr"},
			want:      "xx",
			wantFound: true,
		},
		{
			name: "english preferred over other candidates",
			langs: []capability.Language{
				{Code: "hi", Targets: []string{"fr"}},
				{Code: "ar", Targets: []string{"de"}},
				{Code: "en", Targets: []string{"fr"}},
			},
			source:    Auto,
			targets:   []string{"fr"},
			want:      "en",
			wantFound: true,
		},
		{
			name: "english chosen when it reaches a later target",
			langs: []capability.Language{
				{Code: "en", Targets: []string{"de"}},
				{Code: "hi", Targets: []string{"fr"}},
			},
			source:    Auto,
			targets:   []string{"fr", "de"},
			want:      "en",
			wantFound: true,
		},
		{
			name: "fallback to first installed language",
			langs: []capability.Language{
				{Code: "ar", Targets: []string{"de"}},
				{Code: "hi", Targets: []string{"ta"}},
			},
			source:    Auto,
			targets:   []string{"ta"},
			want:      "hi",
			wantFound: true,
		},
		{
			name: "english installed without reaching targets falls back",
			langs: []capability.Language{
				{Code: "en", Targets: []string{"hi"}},
				{Code: "ml", Targets: []string{"ta"}},
			},
			source:    Auto,
			targets:   []string{"ta"},
			want:      "ml",
			wantFound: true,
		},
		{
			name: "fallback follows enumeration order, not target order",
			langs: []capability.Language{
				{Code: "ru", Targets: []string{"ja"}},
				{Code: "zh", Targets: []string{"fr"}},
			},
			source:    Auto,
			targets:   []string{"fr", "ja"},
			want:      "ru",
			wantFound: true,
		},
		{
			name: "nothing reaches any target",
			langs: []capability.Language{
				{Code: "en", Targets: []string{"hi"}},
			},
			source:    Auto,
			targets:   []string{"ja"},
			want:      Auto,
			wantFound: false,
		},
		{
			name: "hint wins when routable",
			langs: []capability.Language{
				{Code: "en", Targets: []string{"fr"}},
				{Code: "es", Targets: []string{"fr"}},
			},
			source:    Auto,
			targets:   []string{"fr"},
			opts:      []Option{WithHint("es")},
			want:      "es",
			wantFound: true,
		},
		{
			name: "unroutable hint is ignored",
			langs: []capability.Language{
				{Code: "en", Targets: []string{"fr"}},
			},
			source:    Auto,
			targets:   []string{"fr"},
			opts:      []Option{WithHint("uk")},
			want:      "en",
			wantFound: true,
		},
		{
			name: "hint does not override a concrete source",
			langs: []capability.Language{
				{Code: "es", Targets: []string{"fr"}},
			},
			source:    "de",
			targets:   []string{"fr"},
			opts:      []Option{WithHint("es")},
			want:      "de",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := capability.NewGraph(tt.langs)
			got := Resolve(tt.source, tt.targets, g, tt.opts...)

			code, ok := got.Code()
			if ok != tt.wantFound {
				t.Fatalf("Resolve() resolved = %v, want %v", ok, tt.wantFound)
			}
			if ok && code != tt.want {
				t.Errorf("Resolve() = %q, want %q", code, tt.want)
			}
			if got.String() != tt.want {
				t.Errorf("String() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestSource_Unresolved(t *testing.T) {
	s := Unresolved()
	if s.IsResolved() {
		t.Error("Unresolved() must not be resolved")
	}
	if s.String() != "auto" {
		t.Errorf("String() = %q, want auto", s.String())
	}
	if code, ok := s.Code(); ok || code != "" {
		t.Errorf("Code() = %q, %v", code, ok)
	}
}
