package services

import (
	"strings"
	"testing"
)

func TestGenerateGuestName(t *testing.T) {
	for i := 0; i < 50; i++ {
		name := GenerateGuestName()
		parts := strings.Split(name, " ")
		if len(parts) != 2 {
			t.Fatalf("expected two words, got %q", name)
		}
		if !contains(nameAdjectives, parts[0]) {
			t.Errorf("unknown adjective %q", parts[0])
		}
		if !contains(nameAnimals, parts[1]) {
			t.Errorf("unknown animal %q", parts[1])
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
