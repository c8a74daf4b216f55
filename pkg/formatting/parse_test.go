package formatting_test

import (
	"errors"
	"testing"

	"github.com/fieldline/supervisor/pkg/formatting"
)

type record struct {
	Workflows []string `json:"workflows"`
	Rationale string   `json:"rationale"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    record
		wantErr bool
	}{
		{
			"plain json",
			`{"workflows": ["strategy"], "rationale": "direct"}`,
			record{Workflows: []string{"strategy"}, Rationale: "direct"},
			false,
		},
		{
			"json with surrounding whitespace",
			"\n\n  {\"workflows\": [], \"rationale\": \"padded\"}  \n",
			record{Workflows: []string{}, Rationale: "padded"},
			false,
		},
		{
			"fenced json",
			"```json\n{\"workflows\": [\"eligibility\"], \"rationale\": \"fenced\"}\n```",
			record{Workflows: []string{"eligibility"}, Rationale: "fenced"},
			false,
		},
		{
			"fence without language tag",
			"```\n{\"rationale\": \"bare fence\"}\n```",
			record{Rationale: "bare fence"},
			false,
		},
		{
			"object embedded in prose",
			`Here is my assessment: {"workflows": ["strategy"], "rationale": "embedded"} — hope that helps!`,
			record{Workflows: []string{"strategy"}, Rationale: "embedded"},
			false,
		},
		{
			"braces inside string values",
			`prefix {"rationale": "uses {braces} and \"quotes\""} suffix`,
			record{Rationale: `uses {braces} and "quotes"`},
			false,
		},
		{
			"no json at all",
			"I could not produce a structured answer.",
			record{},
			true,
		},
		{
			"unbalanced object",
			`{"rationale": "never closes"`,
			record{},
			true,
		},
		{
			"empty content",
			"",
			record{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[record](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("Parse error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got.Rationale != tt.want.Rationale {
				t.Errorf("Rationale = %q, want %q", got.Rationale, tt.want.Rationale)
			}
			if len(got.Workflows) != len(tt.want.Workflows) {
				t.Fatalf("Workflows = %v, want %v", got.Workflows, tt.want.Workflows)
			}
			for i := range got.Workflows {
				if got.Workflows[i] != tt.want.Workflows[i] {
					t.Errorf("Workflows[%d] = %q, want %q", i, got.Workflows[i], tt.want.Workflows[i])
				}
			}
		})
	}
}
