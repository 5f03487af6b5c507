package model

import "testing"

func TestIndexWord(t *testing.T) {
	tests := []struct {
		s, word string
		want    int
	}{
		{"check the box", "check", 0},
		{"tick the checkbox", "check", -1},
		{"the checkbox, then check", "check", 19},
		{"verify purchase succeeded", "has", -1},
		{"page has results", "has", 5},
		{"the search container is empty", "contain", -1},
		{"page contains go", "contains", 5},
		{"页面包含百度", "包含", 6},
		{"wait 3s", "s", -1},
		{"anything", "", -1},
	}
	for _, tt := range tests {
		if got := IndexWord(tt.s, tt.word); got != tt.want {
			t.Errorf("IndexWord(%q, %q) = %d, want %d", tt.s, tt.word, got, tt.want)
		}
	}
}

func TestContainsWord(t *testing.T) {
	if !ContainsWord("the url is right", "网址", "url") {
		t.Error("expected url to match")
	}
	if ContainsWord("curled up", "url") {
		t.Error("url matched inside curled")
	}
}
