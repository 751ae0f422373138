package types

import (
	"net/http"
	"net/textproto"
	"slices"
	"strings"
)

// Header is a single header field.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields. Lookups are case-insensitive
// and stored names keep the case they were added with. The zero value is an
// empty list.
//
// Headers is a value type: With returns a new list and never modifies the
// receiver.
type Headers struct {
	fields []Header
}

// NewHeaders returns a list holding a copy of fields.
func NewHeaders(fields ...Header) Headers {
	return Headers{fields: slices.Clone(fields)}
}

// HeadersFromHTTP converts an http.Header into a Headers list. Fields are
// emitted in sorted canonical-name order. Multiple values for one name are
// joined with ", " into a single field, except Set-Cookie, whose values stay
// separate because they cannot be folded.
func HeadersFromHTTP(h http.Header) Headers {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	fields := make([]Header, 0, len(names))
	for _, name := range names {
		values := h[name]
		if len(values) == 0 {
			continue
		}
		canonical := textproto.CanonicalMIMEHeaderKey(name)
		if canonical == "Set-Cookie" {
			for _, v := range values {
				fields = append(fields, Header{Name: canonical, Value: v})
			}
			continue
		}
		fields = append(fields, Header{Name: canonical, Value: strings.Join(values, ", ")})
	}
	return Headers{fields: fields}
}

// Len returns the number of fields.
func (h Headers) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the fields in order.
func (h Headers) Fields() []Header {
	return slices.Clone(h.fields)
}

// Values returns every value stored under name, in order.
func (h Headers) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Get returns the values stored under name joined with ", ", or "" if none.
func (h Headers) Get(name string) string {
	return strings.Join(h.Values(name), ", ")
}

// Has reports whether at least one field is stored under name.
func (h Headers) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// With returns a copy of h with the field appended.
func (h Headers) With(name, value string) Headers {
	fields := make([]Header, len(h.fields), len(h.fields)+1)
	copy(fields, h.fields)
	return Headers{fields: append(fields, Header{Name: name, Value: value})}
}

// Without returns a copy of h with every field named in names removed.
func (h Headers) Without(names ...string) Headers {
	fields := make([]Header, 0, len(h.fields))
	for _, f := range h.fields {
		drop := false
		for _, n := range names {
			if strings.EqualFold(f.Name, n) {
				drop = true
				break
			}
		}
		if !drop {
			fields = append(fields, f)
		}
	}
	return Headers{fields: fields}
}

// ContentType returns the Content-Type value, or "" if absent.
func (h Headers) ContentType() string {
	return h.Get("Content-Type")
}
