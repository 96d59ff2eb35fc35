package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "msg-123",
			paramName: "messageIds",
			want:      []string{"msg-123"},
		},
		{
			name:      "array of strings",
			input:     []interface{}{"id1", "id2", "id3"},
			paramName: "messageIds",
			want:      []string{"id1", "id2", "id3"},
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"id1", 123},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"id1", ""},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     42,
			paramName: "messageIds",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		size int
		want [][]string
	}{
		{
			name: "empty input",
			ids:  nil,
			size: 2,
			want: nil,
		},
		{
			name: "smaller than chunk size",
			ids:  []string{"a", "b"},
			size: 5,
			want: [][]string{{"a", "b"}},
		},
		{
			name: "exact multiple",
			ids:  []string{"a", "b", "c", "d"},
			size: 2,
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "remainder chunk",
			ids:  []string{"a", "b", "c"},
			size: 2,
			want: [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "zero size uses default",
			ids:  []string{"a", "b", "c"},
			size: 0,
			want: [][]string{{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.ids, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("chunk %d: got %v, want %v", i, got[i], tt.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("chunk %d[%d] = %q, want %q", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	results := ProcessBatch([]string{"ok-1", "bad", "ok-2"}, func(id string) (string, error) {
		if id == "bad" {
			return "", errors.New("boom")
		}
		return "done", nil
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "success" || results[0].Result != "done" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Error != "boom" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
	if results[2].Status != "success" {
		t.Errorf("unexpected third result: %+v", results[2])
	}
}

func TestProcessChunked_BulkSuccess(t *testing.T) {
	var chunkCalls int
	results := ProcessChunked([]string{"a", "b", "c", "d"}, 2,
		func(ids []string) error {
			chunkCalls++
			return nil
		},
		func(id string) (string, error) {
			t.Fatalf("item fallback must not run when the bulk call succeeds")
			return "", nil
		})

	if chunkCalls != 2 {
		t.Errorf("got %d bulk calls, want 2", chunkCalls)
	}
	for _, r := range results {
		if r.Status != "success" {
			t.Errorf("unexpected result: %+v", r)
		}
	}
}

func TestProcessChunked_FallsBackPerItem(t *testing.T) {
	// The second chunk fails as a whole; its items are retried one by
	// one so only the genuinely bad ID reports an error.
	results := ProcessChunked([]string{"a", "b", "bad", "d"}, 2,
		func(ids []string) error {
			for _, id := range ids {
				if id == "bad" {
					return errors.New("bulk rejected")
				}
			}
			return nil
		},
		func(id string) (string, error) {
			if id == "bad" {
				return "", errors.New("not found")
			}
			return "ok", nil
		})

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	byID := map[string]Result{}
	for _, r := range results {
		byID[r.ID] = r
	}
	if byID["bad"].Status != "error" {
		t.Errorf("expected error for bad, got %+v", byID["bad"])
	}
	for _, id := range []string{"a", "b", "d"} {
		if byID[id].Status != "success" {
			t.Errorf("expected success for %s, got %+v", id, byID[id])
		}
	}
}

func TestProcessChunked_NilChunkFn(t *testing.T) {
	var itemCalls int
	results := ProcessChunked([]string{"a", "b", "c"}, 2, nil,
		func(id string) (string, error) {
			itemCalls++
			return "ok", nil
		})

	if itemCalls != 3 {
		t.Errorf("got %d item calls, want 3", itemCalls)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("a", "ok"),
		NewErrorResult("b", fmt.Errorf("nope")),
	}

	var br BatchResult
	if err := json.Unmarshal([]byte(FormatResults(results)), &br); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if br.Total != 2 || br.Successful != 1 || br.Failed != 1 {
		t.Errorf("unexpected counts: %+v", br)
	}
	if len(br.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(br.Results))
	}
	if br.Results[1].Error != "nope" {
		t.Errorf("unexpected error field: %+v", br.Results[1])
	}
}
