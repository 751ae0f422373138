package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"xget-hq/edge/pkg/proxy/types"
)

// Strategy is the body encoding chosen for a response.
type Strategy string

const (
	// StrategyJSON re-encodes a JSON body.
	StrategyJSON Strategy = "json"
	// StrategyBinary sends the body bytes unchanged.
	StrategyBinary Strategy = "binary"
	// StrategyText sends the body as text.
	StrategyText Strategy = "text"
)

const (
	defaultBinaryContentType = "application/octet-stream"
	defaultTextContentType   = "text/plain; charset=utf-8"
)

// SelectStrategy picks the body encoding for resp. A Content-Type containing
// application/json selects JSON; otherwise a binary body is sent as bytes and
// anything else as text.
func SelectStrategy(resp *types.Response) Strategy {
	if strings.Contains(strings.ToLower(resp.ContentType()), "application/json") {
		return StrategyJSON
	}
	if resp.Body.Kind() == types.BodyBinary {
		return StrategyBinary
	}
	return StrategyText
}

// PreparedBody is a response body ready to be written.
type PreparedBody struct {
	Strategy    Strategy
	Data        []byte
	ContentType string
}

// PrepareBody reads and encodes the body of resp according to its strategy.
// A JSON body that does not parse yields a serialization error. Nothing is
// written, so a failure can still be reported as a 500.
func PrepareBody(resp *types.Response) (*PreparedBody, error) {
	strategy := SelectStrategy(resp)

	raw, err := resp.Body.ReadAll()
	if err != nil {
		return nil, SerializationError("failed to read response body", err)
	}

	out := &PreparedBody{Strategy: strategy, ContentType: resp.ContentType()}
	switch strategy {
	case StrategyJSON:
		data, err := reencodeJSON(raw)
		if err != nil {
			return nil, SerializationError(fmt.Sprintf("invalid JSON response body: %v", err), err)
		}
		out.Data = data
	case StrategyBinary:
		out.Data = raw
		if out.ContentType == "" {
			out.ContentType = defaultBinaryContentType
		}
	default:
		out.Data = raw
		if out.ContentType == "" {
			out.ContentType = defaultTextContentType
		}
	}
	return out, nil
}

// reencodeJSON parses a single JSON value and writes it back compactly.
// Numbers keep their original literal form.
func reencodeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteResult describes what WriteResponse sent.
type WriteResult struct {
	Strategy Strategy

	// Bytes is the number of body bytes written.
	Bytes int

	// HeaderWritten is true once the status line has been sent. After that
	// point a failure can no longer be reported to the client.
	HeaderWritten bool
}

// WriteResponse writes resp to w: status, every header field in order, then
// the body encoded by its strategy. Content-Length always reflects the
// encoded body. No body is read or written for 1xx, 204 and 304 responses.
//
// Errors returned before HeaderWritten is set are tagged serialization
// errors.
func WriteResponse(w http.ResponseWriter, resp *types.Response) (WriteResult, error) {
	if !bodyAllowedForStatus(resp.Status) {
		return writeHeaderOnly(w, resp), nil
	}

	body, err := PrepareBody(resp)
	if err != nil {
		return WriteResult{Strategy: SelectStrategy(resp)}, err
	}
	result := WriteResult{Strategy: body.Strategy}

	h := copyHeader(w, resp)
	if body.ContentType != "" {
		h.Set("Content-Type", body.ContentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body.Data)))
	w.WriteHeader(resp.Status)
	result.HeaderWritten = true

	n, err := w.Write(body.Data)
	result.Bytes = n
	if err != nil {
		return result, fmt.Errorf("write response body: %w", err)
	}
	return result, nil
}

// WriteHeadResponse answers a HEAD request: the headers WriteResponse would
// send, without a body. A Content-Length declared by the handler is kept
// since it describes the body of the matching GET. Otherwise text bodies are
// encoded to compute it; absent and binary bodies are not read.
func WriteHeadResponse(w http.ResponseWriter, resp *types.Response) (WriteResult, error) {
	if !bodyAllowedForStatus(resp.Status) || resp.Header.Has("Content-Length") ||
		resp.Body.Kind() != types.BodyText {
		return writeHeaderOnly(w, resp), nil
	}

	body, err := PrepareBody(resp)
	if err != nil {
		return WriteResult{Strategy: SelectStrategy(resp)}, err
	}

	h := copyHeader(w, resp)
	if body.ContentType != "" {
		h.Set("Content-Type", body.ContentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body.Data)))
	w.WriteHeader(resp.Status)
	return WriteResult{Strategy: body.Strategy, HeaderWritten: true}, nil
}

// writeHeaderOnly sends the status and headers of resp and releases its body.
func writeHeaderOnly(w http.ResponseWriter, resp *types.Response) WriteResult {
	_ = resp.Body.Close()

	h := copyHeader(w, resp)
	if !bodyAllowedForStatus(resp.Status) {
		h.Del("Content-Length")
	}
	w.WriteHeader(resp.Status)
	return WriteResult{Strategy: SelectStrategy(resp), HeaderWritten: true}
}

func copyHeader(w http.ResponseWriter, resp *types.Response) http.Header {
	h := w.Header()
	for _, f := range resp.Header.Fields() {
		h.Add(f.Name, f.Value)
	}
	h.Del("Transfer-Encoding")
	return h
}

func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
