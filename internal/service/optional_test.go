package service

import (
	"encoding/json"
	"testing"
)

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	var payload struct {
		Description Optional[string] `json:"description"`
		CategoryID  Optional[string] `json:"categoryId"`
		Due         Optional[string] `json:"dateToComplete"`
	}
	body := `{"description": null, "categoryId": "abc"}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !payload.Description.Set || payload.Description.Value != nil {
		t.Fatalf("expected description explicitly nulled, got %+v", payload.Description)
	}
	if !payload.CategoryID.Set || payload.CategoryID.Value == nil || *payload.CategoryID.Value != "abc" {
		t.Fatalf("expected categoryId set to abc, got %+v", payload.CategoryID)
	}
	if payload.Due.Set {
		t.Fatalf("expected dateToComplete to be absent, got %+v", payload.Due)
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var payload struct {
		Description Optional[string] `json:"description"`
	}
	if err := json.Unmarshal([]byte(`{"description": 12}`), &payload); err == nil {
		t.Fatal("expected a type error")
	}
}
