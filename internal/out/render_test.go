package out

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nvalverde/bridgescout/internal/config"
	"github.com/nvalverde/bridgescout/internal/model"
)

func testEnvelope() model.Envelope {
	return model.Envelope{
		Version: model.EnvelopeVersion,
		Success: true,
		Data: []map[string]any{
			{"bridge_key": "across", "amount_out": "995000", "gas_cost_usd": 1.2},
			{"bridge_key": "hop", "amount_out": "990000", "gas_cost_usd": 0.8},
		},
		Meta: model.EnvelopeMeta{
			RequestID: "req-1",
			Timestamp: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Command:   "routes compare",
			Cache:     model.CacheStatus{Status: "miss"},
		},
	}
}

func TestRenderJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testEnvelope(), config.Settings{OutputMode: "json"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["version"] != model.EnvelopeVersion {
		t.Fatalf("version = %v", decoded["version"])
	}
	if decoded["success"] != true {
		t.Fatalf("success = %v", decoded["success"])
	}
	if _, ok := decoded["meta"]; !ok {
		t.Fatal("meta missing")
	}
}

func TestRenderResultsOnly(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testEnvelope(), config.Settings{OutputMode: "json", ResultsOnly: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("results-only output should be the bare data payload: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("records = %d", len(decoded))
	}
}

func TestRenderSelectProjection(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testEnvelope(), config.Settings{
		OutputMode:   "json",
		ResultsOnly:  true,
		SelectFields: []string{"bridge_key"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, record := range decoded {
		if len(record) != 1 {
			t.Fatalf("record = %v, want only selected field", record)
		}
		if _, ok := record["bridge_key"]; !ok {
			t.Fatalf("record = %v, missing bridge_key", record)
		}
	}
}

func TestRenderPlainLines(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testEnvelope(), config.Settings{OutputMode: "plain", ResultsOnly: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want one per record", len(lines))
	}
	if !strings.Contains(lines[0], "bridge_key=across") {
		t.Fatalf("line = %q", lines[0])
	}
}

func TestRenderPlainEmptyList(t *testing.T) {
	env := testEnvelope()
	env.Data = []any{}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain", ResultsOnly: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("output = %q", buf.String())
	}
}
