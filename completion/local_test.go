package completion

import (
	"context"
	"testing"

	"github.com/iw2rmb/quill/buffer"
)

func TestWordProvider_Completions(t *testing.T) {
	p := &WordProvider{Words: []string{"find", "format", "print", "fn"}}
	snap := buffer.SnapshotOf("let fn")

	items, err := p.Completions(context.Background(), snap, snap.ByteLen(), RequestContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Label
	}
	want := []string{"fn", "find", "format"}
	if len(got) != len(want) {
		t.Fatalf("labels: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels: got %v, want %v", got, want)
		}
	}
	if items[0].Kind != KindText || items[0].InsertText != "fn" {
		t.Fatalf("item shape: got %+v", items[0])
	}
}

func TestWordProvider_InlineCompletion(t *testing.T) {
	p := &WordProvider{Words: []string{"println", "print"}}
	snap := buffer.SnapshotOf("pri")

	item, err := p.InlineCompletion(context.Background(), snap, snap.ByteLen(), RequestContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item == nil || item.InsertText != "nt" {
		t.Fatalf("inline item: got %+v, want remainder %q", item, "nt")
	}
	if item.FilterText != "pri" {
		t.Fatalf("filter text: got %q, want %q", item.FilterText, "pri")
	}
}

func TestWordProvider_InlineNoCandidate(t *testing.T) {
	p := &WordProvider{Words: []string{"alpha"}}
	snap := buffer.SnapshotOf("zz")

	item, err := p.InlineCompletion(context.Background(), snap, snap.ByteLen(), RequestContext{})
	if err != nil || item != nil {
		t.Fatalf("got %+v/%v, want nil/nil", item, err)
	}
}

func TestWordProvider_IsTrigger(t *testing.T) {
	p := &WordProvider{}
	snap := buffer.SnapshotOf("")
	cases := []struct {
		inserted string
		want     bool
	}{
		{inserted: "a", want: true},
		{inserted: "_", want: true},
		{inserted: "9", want: true},
		{inserted: "é", want: true},
		{inserted: " ", want: false},
		{inserted: ".", want: false},
		{inserted: "ab c", want: false},
		{inserted: "", want: false},
	}
	for _, tc := range cases {
		if got := p.IsTrigger(snap, 0, tc.inserted); got != tc.want {
			t.Fatalf("IsTrigger(%q): got %v, want %v", tc.inserted, got, tc.want)
		}
	}
}
