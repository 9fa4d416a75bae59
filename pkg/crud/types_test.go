package crud

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreate_EncodesWithoutQuery(t *testing.T) {
	payload, err := Codec.Marshal(Create("User", map[string]any{"name": "Carol"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), "query") {
		t.Fatalf("create request must not carry a query key, got %s", payload)
	}
	want := `{"action":"create","entity":"User","values":{"name":"Carol"}}`
	var got, expected map[string]any
	if err := Codec.UnmarshalFromString(string(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Codec.UnmarshalFromString(want, &expected); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_CarriesIdentifier(t *testing.T) {
	req := Update("User", int64(42), map[string]any{"name": "Bob"})
	want := ActionRequest{
		Entity: "User",
		Action: ActionUpdate,
		Values: map[string]any{"name": "Bob"},
		Query:  &Query{Where: map[string]any{"Id": int64(42)}},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	if id, ok := req.ID(); !ok || id != int64(42) {
		t.Fatalf("ID() = %v, %v", id, ok)
	}
}

func TestActionRequest_Validate(t *testing.T) {
	cases := []struct {
		name string
		req  ActionRequest
		want error
	}{
		{name: "create ok", req: Create("User", map[string]any{"a": 1})},
		{name: "create with query", req: ActionRequest{Entity: "User", Action: ActionCreate, Query: WhereID(1)}, want: ErrQueryOnCreate},
		{name: "update without id", req: ActionRequest{Entity: "User", Action: ActionUpdate}, want: ErrIDRequired},
		{name: "remove with zero id", req: Remove("User", 0), want: ErrIDRequired},
		{name: "read ok", req: Read("User", "abc")},
		{name: "list ok", req: List("User", nil)},
		{name: "missing entity", req: ActionRequest{Action: ActionList}, want: ErrEntityRequired},
		{name: "unknown action", req: ActionRequest{Entity: "User", Action: "upsert"}, want: ErrUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestIsEmptyID(t *testing.T) {
	empty := []any{nil, "", "  ", 0, int64(0), 0.0}
	for _, id := range empty {
		if !IsEmptyID(id) {
			t.Fatalf("IsEmptyID(%#v) = false, want true", id)
		}
	}
	present := []any{1, int64(42), "x", 3.5}
	for _, id := range present {
		if IsEmptyID(id) {
			t.Fatalf("IsEmptyID(%#v) = true, want false", id)
		}
	}
}
