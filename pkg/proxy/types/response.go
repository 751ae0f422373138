package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// BodyKind identifies how a response body is represented.
type BodyKind int

const (
	// BodyNone is an absent body.
	BodyNone BodyKind = iota
	// BodyText is a string body.
	BodyText
	// BodyBinary is a byte stream.
	BodyBinary
)

func (k BodyKind) String() string {
	switch k {
	case BodyNone:
		return "none"
	case BodyText:
		return "text"
	case BodyBinary:
		return "binary"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// Body is a response body: absent, text, or a binary stream. A binary body
// can be read once.
type Body struct {
	kind BodyKind
	text string
	r    io.Reader
}

// NoBody returns an absent body.
func NoBody() Body {
	return Body{kind: BodyNone}
}

// Text returns a text body.
func Text(s string) Body {
	return Body{kind: BodyText, text: s}
}

// Binary returns a binary body streamed from r. If r is an io.Closer it is
// closed after it has been read.
func Binary(r io.Reader) Body {
	if r == nil {
		return NoBody()
	}
	return Body{kind: BodyBinary, r: r}
}

// Bytes returns a binary body holding b.
func Bytes(b []byte) Body {
	return Binary(bytes.NewReader(b))
}

// Kind returns the body's kind.
func (b Body) Kind() BodyKind {
	return b.kind
}

// ReadAll returns the full body. An absent body yields nil. Binary streams
// are closed afterwards if they implement io.Closer.
func (b Body) ReadAll() ([]byte, error) {
	switch b.kind {
	case BodyText:
		return []byte(b.text), nil
	case BodyBinary:
		data, err := io.ReadAll(b.r)
		if cerr := b.Close(); err == nil && cerr != nil {
			err = cerr
		}
		return data, err
	default:
		return nil, nil
	}
}

// Close releases a binary stream without reading it.
func (b Body) Close() error {
	if c, ok := b.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Response is the uniform response produced by handlers.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Header holds the fields to send, in order.
	Header Headers

	// Body is the response body.
	Body Body
}

// NewResponse builds a Response.
func NewResponse(status int, header Headers, body Body) *Response {
	return &Response{Status: status, Header: header, Body: body}
}

// ContentType returns the response's Content-Type, or "".
func (r *Response) ContentType() string {
	return r.Header.ContentType()
}

// JSONContentType is the Content-Type of JSON responses built by JSON.
const JSONContentType = "application/json; charset=utf-8"

// JSON builds a response whose text body is v encoded as JSON.
func JSON(status int, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode JSON response: %w", err)
	}
	return NewResponse(status, NewHeaders(Header{Name: "Content-Type", Value: JSONContentType}), Text(string(data))), nil
}
