package generator

import (
	"errors"
	"testing"
)

func TestParseRiddleJSON(t *testing.T) {
	riddle, errParse := parseRiddleJSON(`{"question":"What has keys but no locks?","answer":"A piano"}`)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if riddle.Question != "What has keys but no locks?" || riddle.Answer != "A piano" {
		t.Fatalf("unexpected riddle: %+v", riddle)
	}
}

func TestParseRiddleJSONTrimsWhitespace(t *testing.T) {
	riddle, errParse := parseRiddleJSON(`{"question":"  q  ","answer":"  a  "}`)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if riddle.Question != "q" || riddle.Answer != "a" {
		t.Fatalf("expected trimmed fields, got %+v", riddle)
	}
}

func TestParseRiddleJSONRejectsIncomplete(t *testing.T) {
	cases := []string{
		`{}`,
		`{"question":"q"}`,
		`{"answer":"a"}`,
		`{"question":"","answer":"a"}`,
		`not json`,
	}
	for _, content := range cases {
		if _, errParse := parseRiddleJSON(content); !errors.Is(errParse, ErrGeneration) {
			t.Fatalf("expected ErrGeneration for %q, got %v", content, errParse)
		}
	}
}
