package types

import (
	"encoding/json"
	"testing"
)

func TestFlexIntFromNumberAndString(t *testing.T) {
	var payload struct {
		Duration FlexInt `json:"duration"`
	}

	if err := json.Unmarshal([]byte(`{"duration": 245}`), &payload); err != nil {
		t.Fatalf("number unmarshal failed: %v", err)
	}
	if payload.Duration.Int() != 245 {
		t.Errorf("expected 245, got %d", payload.Duration.Int())
	}

	if err := json.Unmarshal([]byte(`{"duration": "245"}`), &payload); err != nil {
		t.Fatalf("string unmarshal failed: %v", err)
	}
	if payload.Duration.Int() != 245 {
		t.Errorf("expected 245 from string, got %d", payload.Duration.Int())
	}

	if err := json.Unmarshal([]byte(`{"duration": "abc"}`), &payload); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestFlexListSingleAndArray(t *testing.T) {
	var payload struct {
		IDs FlexList[string] `json:"request_ids"`
	}

	if err := json.Unmarshal([]byte(`{"request_ids": ["a", "b"]}`), &payload); err != nil {
		t.Fatalf("array unmarshal failed: %v", err)
	}
	if len(payload.IDs) != 2 {
		t.Errorf("expected 2 ids, got %d", len(payload.IDs))
	}

	if err := json.Unmarshal([]byte(`{"request_ids": "solo"}`), &payload); err != nil {
		t.Fatalf("single unmarshal failed: %v", err)
	}
	if len(payload.IDs) != 1 || payload.IDs[0] != "solo" {
		t.Errorf("expected [solo], got %v", payload.IDs.Slice())
	}
}
