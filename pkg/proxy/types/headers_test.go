package types

import (
	"net/http"
	"reflect"
	"testing"
)

func TestHeadersFromHTTP(t *testing.T) {
	h := http.Header{}
	h.Add("X-Trace", "a")
	h.Add("X-Trace", "b")
	h.Add("Accept", "application/json")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	got := HeadersFromHTTP(h).Fields()
	want := []Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Set-Cookie", Value: "b=2"},
		{Name: "X-Trace", Value: "a, b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestHeaders_Lookup(t *testing.T) {
	h := NewHeaders(
		Header{Name: "content-type", Value: "text/plain"},
		Header{Name: "X-Multi", Value: "1"},
		Header{Name: "x-multi", Value: "2"},
	)

	tests := []struct {
		name string
		key  string
		want string
		has  bool
	}{
		{"case-insensitive", "Content-Type", "text/plain", true},
		{"joined values", "X-MULTI", "1, 2", true},
		{"missing", "Authorization", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if got := h.Has(tt.key); got != tt.has {
				t.Errorf("Has(%q) = %v, want %v", tt.key, got, tt.has)
			}
		})
	}

	if got := h.ContentType(); got != "text/plain" {
		t.Errorf("ContentType() = %q", got)
	}
}

func TestHeaders_WithDoesNotModifyReceiver(t *testing.T) {
	base := NewHeaders(Header{Name: "A", Value: "1"})
	next := base.With("B", "2")

	if base.Len() != 1 {
		t.Errorf("base.Len() = %d, want 1", base.Len())
	}
	if next.Len() != 2 || next.Get("b") != "2" {
		t.Errorf("next = %v", next.Fields())
	}

	fields := base.Fields()
	fields[0].Value = "changed"
	if base.Get("A") != "1" {
		t.Error("mutating Fields() result changed the Headers")
	}
}

func TestHeaders_Without(t *testing.T) {
	h := NewHeaders(
		Header{Name: "Connection", Value: "keep-alive"},
		Header{Name: "Content-Type", Value: "text/html"},
		Header{Name: "keep-alive", Value: "timeout=5"},
	)
	got := h.Without("connection", "Keep-Alive")
	if got.Len() != 1 || !got.Has("Content-Type") {
		t.Errorf("Without() = %v", got.Fields())
	}
	if h.Len() != 3 {
		t.Error("Without modified the receiver")
	}
}

func TestHeaders_ZeroValue(t *testing.T) {
	var h Headers
	if h.Len() != 0 || h.Get("x") != "" || h.Has("x") {
		t.Error("zero Headers should be empty")
	}
}
