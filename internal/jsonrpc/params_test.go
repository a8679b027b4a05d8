package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestParamAt(t *testing.T) {
	tests := []struct {
		name     string
		params   string
		wantKind string
		wantStr  string
		wantErr  bool
	}{
		{"positional string", `["` + testAddress + `"]`, "string", testAddress, false},
		{"named string", `{"address":"` + testAddress + `"}`, "string", testAddress, false},
		{"number", `[42]`, "number", "", false},
		{"null", `[null]`, "null", "", false},
		{"object", `[{"a":1}]`, "object", "", false},
		{"bool", `[true]`, "true", "", false},
		{"missing positional", `[]`, "", "", true},
		{"missing named", `{"addr":"x"}`, "", "", true},
		{"scalar params", `"x"`, "", "", true},
		{"broken json", `[`, "", "", true},
		{"empty", ``, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParamAt(json.RawMessage(tt.params), 0, "address")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParamAt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if p.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", p.Kind, tt.wantKind)
			}
			if p.Str != tt.wantStr {
				t.Errorf("Str = %q, want %q", p.Str, tt.wantStr)
			}
			if p.IsString() != (tt.wantKind == "string") {
				t.Errorf("IsString() mismatch for kind %s", p.Kind)
			}
		})
	}
}

func TestParamAt_Raw(t *testing.T) {
	p, err := ParamAt(json.RawMessage(`["a", {"x": [1, 2]}]`), 1, "")
	if err != nil {
		t.Fatalf("ParamAt failed: %v", err)
	}
	if p.Raw != `{"x":[1,2]}` {
		t.Errorf("Raw = %s", p.Raw)
	}
}

func TestArrayAt(t *testing.T) {
	params := json.RawMessage(`["toEvm", ["` + testAddress + `", 7, null]]`)

	items, err := ArrayAt(params, 1, "addresses")
	if err != nil {
		t.Fatalf("ArrayAt failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if !items[0].IsString() || items[0].Str != testAddress {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].Kind != "number" || items[2].Kind != "null" {
		t.Errorf("unexpected kinds %s %s", items[1].Kind, items[2].Kind)
	}

	named := json.RawMessage(`{"direction":"toEvm","addresses":["a"]}`)
	if items, err := ArrayAt(named, 1, "addresses"); err != nil || len(items) != 1 {
		t.Errorf("named ArrayAt = %v, %v", items, err)
	}

	if _, err := ArrayAt(json.RawMessage(`["toEvm", "x"]`), 1, "addresses"); err == nil {
		t.Error("Expected error for non-array parameter")
	}
}
