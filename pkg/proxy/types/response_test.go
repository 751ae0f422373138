package types

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestBody_ReadAll(t *testing.T) {
	tests := []struct {
		name string
		body Body
		kind BodyKind
		want []byte
	}{
		{"none", NoBody(), BodyNone, nil},
		{"text", Text("hello"), BodyText, []byte("hello")},
		{"binary", Bytes([]byte{1, 2, 3}), BodyBinary, []byte{1, 2, 3}},
		{"nil reader", Binary(nil), BodyNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.body.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.body.Kind(), tt.kind)
			}
			got, err := tt.body.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ReadAll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBody_ReadAllClosesStream(t *testing.T) {
	rc := &closeTracker{Reader: bytes.NewReader([]byte("data"))}
	if _, err := Binary(rc).ReadAll(); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !rc.closed {
		t.Error("expected stream to be closed after ReadAll")
	}
}

func TestBodyKind_String(t *testing.T) {
	if BodyBinary.String() != "binary" {
		t.Errorf("String() = %q", BodyBinary.String())
	}
	if BodyKind(9).String() != "BodyKind(9)" {
		t.Errorf("String() = %q", BodyKind(9).String())
	}
}

func TestJSON(t *testing.T) {
	resp, err := JSON(404, StatusBody{Error: "Not Found", Message: "nothing here"})
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if resp.Status != 404 {
		t.Errorf("Status = %d, want 404", resp.Status)
	}
	if resp.ContentType() != JSONContentType {
		t.Errorf("ContentType() = %q", resp.ContentType())
	}

	data, _ := resp.Body.ReadAll()
	var body StatusBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Message != "nothing here" {
		t.Errorf("Message = %q", body.Message)
	}
}

func TestJSON_Unencodable(t *testing.T) {
	if _, err := JSON(200, map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("expected error for unencodable value")
	}
}
