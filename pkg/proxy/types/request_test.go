package types

import (
	"net/http"
	"testing"
)

func TestNewRequest_BodyPresence(t *testing.T) {
	tests := []struct {
		method  string
		body    []byte
		hasBody bool
	}{
		{http.MethodGet, []byte("ignored"), false},
		{http.MethodHead, nil, false},
		{http.MethodPost, []byte(`{"a":1}`), true},
		{http.MethodPost, nil, true},
		{http.MethodDelete, nil, true},
		{http.MethodOptions, []byte("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := NewRequest(tt.method, "http://localhost:3000/", Headers{}, tt.body)
			if req.HasBody() != tt.hasBody {
				t.Errorf("HasBody() = %v, want %v", req.HasBody(), tt.hasBody)
			}
		})
	}
}

func TestNewRequest_PreservesBytes(t *testing.T) {
	req := NewRequest(http.MethodPut, "http://localhost:3000/x", Headers{}, []byte{0x00, 0xff})
	if len(req.Body) != 2 || req.Body[1] != 0xff {
		t.Errorf("Body = %v", req.Body)
	}
}
