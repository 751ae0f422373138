package proxy

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xget-hq/edge/pkg/proxy/types"
)

func jsonHeaders() types.Headers {
	return types.NewHeaders(types.Header{Name: "Content-Type", Value: "application/json"})
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name string
		resp *types.Response
		want Strategy
	}{
		{
			name: "json content type",
			resp: types.NewResponse(200, jsonHeaders(), types.Text(`{}`)),
			want: StrategyJSON,
		},
		{
			name: "json with charset and binary body",
			resp: types.NewResponse(200, types.NewHeaders(types.Header{Name: "content-type", Value: "Application/JSON; charset=utf-8"}), types.Bytes([]byte(`[]`))),
			want: StrategyJSON,
		},
		{
			name: "binary body",
			resp: types.NewResponse(200, types.NewHeaders(types.Header{Name: "Content-Type", Value: "image/png"}), types.Bytes([]byte{0x89})),
			want: StrategyBinary,
		},
		{
			name: "text body",
			resp: types.NewResponse(200, types.Headers{}, types.Text("hi")),
			want: StrategyText,
		},
		{
			name: "absent body",
			resp: types.NewResponse(200, types.Headers{}, types.NoBody()),
			want: StrategyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.resp); got != tt.want {
				t.Errorf("SelectStrategy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteResponse_JSON(t *testing.T) {
	resp := types.NewResponse(http.StatusCreated, jsonHeaders().With("X-Custom", "1"),
		types.Text("{ \"ok\" : true, \"n\": 12345678901234567890, \"html\": \"<b>\" }"))

	w := httptest.NewRecorder()
	result, err := WriteResponse(w, resp)
	if err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	want := `{"html":"<b>","n":12345678901234567890,"ok":true}`
	if got := w.Body.String(); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if got := w.Header().Get("X-Custom"); got != "1" {
		t.Errorf("X-Custom = %q", got)
	}
	if result.Strategy != StrategyJSON || result.Bytes != len(want) {
		t.Errorf("result = %+v", result)
	}
}

func TestWriteResponse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body types.Body
	}{
		{"malformed", types.Text("not json")},
		{"trailing data", types.Text(`{"a":1} {"b":2}`)},
		{"absent", types.NoBody()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			result, err := WriteResponse(w, types.NewResponse(200, jsonHeaders(), tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindSerialization {
				t.Errorf("KindOf() = %v, want %v", KindOf(err), KindSerialization)
			}
			if result.HeaderWritten {
				t.Error("header should not be written on serialization failure")
			}
			if w.Body.Len() != 0 {
				t.Errorf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestWriteResponse_Binary(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff}
	w := httptest.NewRecorder()

	result, err := WriteResponse(w, types.NewResponse(200, types.Headers{}, types.Bytes(payload)))
	if err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Errorf("body = %v, want %v", w.Body.Bytes(), payload)
	}
	if got := w.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != "4" {
		t.Errorf("Content-Length = %q, want 4", got)
	}
	if result.Strategy != StrategyBinary {
		t.Errorf("Strategy = %v", result.Strategy)
	}
}

func TestWriteResponse_Text(t *testing.T) {
	w := httptest.NewRecorder()
	headers := types.NewHeaders(
		types.Header{Name: "Content-Type", Value: "text/html"},
		types.Header{Name: "Set-Cookie", Value: "a=1"},
		types.Header{Name: "Set-Cookie", Value: "b=2"},
	)

	if _, err := WriteResponse(w, types.NewResponse(200, headers, types.Text("<p>hi</p>"))); err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}
	if w.Body.String() != "<p>hi</p>" {
		t.Errorf("body = %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Values("Set-Cookie"); len(got) != 2 {
		t.Errorf("Set-Cookie = %v, want two fields", got)
	}
}

func TestWriteResponse_AbsentBodyIsEmptyText(t *testing.T) {
	w := httptest.NewRecorder()
	if _, err := WriteResponse(w, types.NewResponse(202, types.Headers{}, types.NoBody())); err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}
	if w.Code != 202 || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "0" {
		t.Errorf("Content-Length = %q, want 0", got)
	}
}

func TestWriteResponse_NoBodyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header types.Headers
		body   types.Body
	}{
		{"204 text", http.StatusNoContent, types.Headers{}, types.Text("dropped")},
		{"304 text", http.StatusNotModified, types.Headers{}, types.Text("dropped")},
		{"204 json absent", http.StatusNoContent, jsonHeaders(), types.NoBody()},
		{"304 json absent", http.StatusNotModified, jsonHeaders().With("ETag", `"v1"`), types.NoBody()},
		{"304 json empty stream", http.StatusNotModified, jsonHeaders(), types.Binary(io.NopCloser(strings.NewReader("")))},
		{"304 json invalid", http.StatusNotModified, jsonHeaders().With("Content-Length", "9"), types.Text("not json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			result, err := WriteResponse(w, types.NewResponse(tt.status, tt.header, tt.body))
			if err != nil {
				t.Fatalf("WriteResponse() error = %v", err)
			}
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if w.Body.Len() != 0 {
				t.Errorf("wrote body %q", w.Body.String())
			}
			if got := w.Header().Get("Content-Length"); got != "" {
				t.Errorf("Content-Length = %q, want none", got)
			}
			if !result.HeaderWritten || result.Bytes != 0 {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestWriteHeadResponse(t *testing.T) {
	tests := []struct {
		name       string
		resp       *types.Response
		wantLength string
		wantType   string
	}{
		{
			name:       "json absent body",
			resp:       types.NewResponse(200, jsonHeaders(), types.NoBody()),
			wantLength: "",
			wantType:   "application/json",
		},
		{
			name:       "json stream keeps declared length",
			resp:       types.NewResponse(200, jsonHeaders().With("Content-Length", "42"), types.Binary(io.NopCloser(strings.NewReader("")))),
			wantLength: "42",
			wantType:   "application/json",
		},
		{
			name:       "json text computes length",
			resp:       types.NewResponse(200, jsonHeaders(), types.Text(`{ "ok": true }`)),
			wantLength: "11",
			wantType:   "application/json",
		},
		{
			name:       "text computes length",
			resp:       types.NewResponse(200, types.Headers{}, types.Text("hello")),
			wantLength: "5",
			wantType:   defaultTextContentType,
		},
		{
			name:       "304 json",
			resp:       types.NewResponse(http.StatusNotModified, jsonHeaders(), types.NoBody()),
			wantLength: "",
			wantType:   "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			result, err := WriteHeadResponse(w, tt.resp)
			if err != nil {
				t.Fatalf("WriteHeadResponse() error = %v", err)
			}
			if w.Code != tt.resp.Status {
				t.Errorf("status = %d, want %d", w.Code, tt.resp.Status)
			}
			if w.Body.Len() != 0 {
				t.Errorf("wrote body %q", w.Body.String())
			}
			if got := w.Header().Get("Content-Length"); got != tt.wantLength {
				t.Errorf("Content-Length = %q, want %q", got, tt.wantLength)
			}
			if got := w.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !result.HeaderWritten || result.Bytes != 0 {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestWriteHeadResponse_InvalidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	result, err := WriteHeadResponse(w, types.NewResponse(200, jsonHeaders(), types.Text("not json")))
	if KindOf(err) != KindSerialization {
		t.Fatalf("KindOf(%v) = %v, want %v", err, KindOf(err), KindSerialization)
	}
	if result.HeaderWritten {
		t.Error("header should not be written on serialization failure")
	}
}

type errWriter struct {
	*httptest.ResponseRecorder
}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteResponse_WriteFailureAfterHeader(t *testing.T) {
	w := errWriter{httptest.NewRecorder()}
	result, err := WriteResponse(w, types.NewResponse(200, types.Headers{}, types.Text("x")))
	if err == nil {
		t.Fatal("expected write error")
	}
	if !result.HeaderWritten {
		t.Error("expected HeaderWritten after status was sent")
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		t.Errorf("write failure should not be tagged, got %v", tagged.Kind)
	}
}
