package zotero_tools

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

func TestParseItemKeys(t *testing.T) {
	tests := []struct {
		name    string
		param   interface{}
		want    []string
		wantErr bool
	}{
		{
			name:  "single key",
			param: "ABCD1234",
			want:  []string{"ABCD1234"},
		},
		{
			name:  "array of keys",
			param: []interface{}{"ABCD1234", "EFGH5678"},
			want:  []string{"ABCD1234", "EFGH5678"},
		},
		{
			name:  "JSON array string",
			param: `["ABCD1234","EFGH5678"]`,
			want:  []string{"ABCD1234", "EFGH5678"},
		},
		{
			name:  "comma-separated string",
			param: "ABCD1234, EFGH5678,IJKL9012",
			want:  []string{"ABCD1234", "EFGH5678", "IJKL9012"},
		},
		{
			name:    "only commas",
			param:   ",,",
			wantErr: true,
		},
		{
			name:    "nil",
			param:   nil,
			wantErr: true,
		},
		{
			name:    "empty array",
			param:   []interface{}{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItemKeys(tt.param)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseItemKeys() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseItemKeys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleDeleteItem(t *testing.T) {
	sc, mux := newConfiguredContext(t)
	mux.HandleFunc("/users/12345/items/ABCD1234", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"key":"ABCD1234","version":7,"data":{"itemType":"book","title":"Old Book"}}`)
		case http.MethodDelete:
			if got := r.Header.Get("If-Unmodified-Since-Version"); got != "7" {
				t.Errorf("If-Unmodified-Since-Version = %q, want %q", got, "7")
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	result, err := handleDeleteItem(context.Background(), callRequest("delete_item", map[string]interface{}{
		"item_key": "ABCD1234",
	}), sc)
	if err != nil {
		t.Fatalf("handleDeleteItem() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleDeleteItem() returned error result: %v", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Successfully deleted item: ABCD1234") {
		t.Errorf("result = %q, want deletion confirmation", text)
	}
}

func TestHandleDeleteItem_notConfigured(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleDeleteItem(context.Background(), callRequest("delete_item", map[string]interface{}{
		"item_key": "ABCD1234",
	}), sc)
	if err != nil {
		t.Fatalf("handleDeleteItem() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when not configured")
	}
	if text := resultText(t, result); !strings.Contains(text, "configure_zotero") {
		t.Errorf("result = %q, want pointer to configure_zotero", text)
	}
}

func TestHandleDeleteItemsBatch_partialFailure(t *testing.T) {
	sc, mux := newConfiguredContext(t)

	itemHandler := func(key string, fail bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				if fail {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				fmt.Fprintf(w, `{"key":%q,"version":3,"data":{"itemType":"book"}}`, key)
			case http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			}
		}
	}
	mux.HandleFunc("/users/12345/items/AAAA1111", itemHandler("AAAA1111", false))
	mux.HandleFunc("/users/12345/items/BBBB2222", itemHandler("BBBB2222", true))
	mux.HandleFunc("/users/12345/items/CCCC3333", itemHandler("CCCC3333", false))

	result, err := handleDeleteItemsBatch(context.Background(), callRequest("delete_items_batch", map[string]interface{}{
		"item_keys": []interface{}{"AAAA1111", "BBBB2222", "CCCC3333"},
	}), sc)
	if err != nil {
		t.Fatalf("handleDeleteItemsBatch() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("batch with partial failure should not be an error result: %v", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, `"successful": 2`) {
		t.Errorf("result = %q, want 2 successful", text)
	}
	if !strings.Contains(text, `"failed": 1`) {
		t.Errorf("result = %q, want 1 failed", text)
	}
	if !strings.Contains(text, "BBBB2222") {
		t.Errorf("result = %q, want failed key reported", text)
	}
}

func TestDeleteItemsBatch_schemaDeclaresArray(t *testing.T) {
	sc := newTestContext(t)
	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	if err := RegisterZoteroTools(mcpSrv, sc, false); err != nil {
		t.Fatalf("RegisterZoteroTools() error = %v", err)
	}

	for _, st := range mcpSrv.ListTools() {
		if st.Tool.Name != "delete_items_batch" {
			continue
		}
		prop, ok := st.Tool.InputSchema.Properties["item_keys"].(map[string]interface{})
		if !ok {
			t.Fatalf("item_keys property missing: %#v", st.Tool.InputSchema.Properties)
		}
		if got := prop["type"]; got != "array" {
			t.Errorf("item_keys schema type = %v, want array", got)
		}
		return
	}
	t.Fatal("delete_items_batch not registered")
}
