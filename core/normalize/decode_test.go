package normalize

import (
	"errors"
	"testing"
)

func TestDecode_Struct(t *testing.T) {
	type page struct {
		Number     int      `json:"number"`
		Paragraphs []string `json:"paragraphs"`
	}
	type document struct {
		Pages []page `json:"pages"`
	}

	result := Normalize("```json\n{pages: [{number: 1, paragraphs: [\"intro\"]},]}\n```")
	doc, err := Decode[document](result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 || doc.Pages[0].Number != 1 || doc.Pages[0].Paragraphs[0] != "intro" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestDecode_Unparseable(t *testing.T) {
	result := Normalize(`{"a": 1, "b": 2`)
	_, err := Decode[map[string]any](result)
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
	if !errors.Is(err, result.Err) {
		t.Errorf("expected last parse error to be wrapped")
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	if _, err := Decode[[]int](Normalize(`{"a": 1}`)); err == nil {
		t.Fatal("expected error decoding an object into a slice")
	}
}
