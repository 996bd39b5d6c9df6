package codecreg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"reflect"
	"strings"
)

// MultipartForm is the target shape produced by MultipartReader: part lists
// grouped by field name.
type MultipartForm map[string][]Part

var multipartFormType = reflect.TypeOf(MultipartForm(nil))

// DecoderReader adapts a Decoder to the MessageReader interface. It
// buffers the message body, honoring the decoder's max-in-memory size when
// the decoder exposes one, and hands the bytes to the decoder.
type DecoderReader struct {
	decoder Decoder
}

func NewDecoderReader(d Decoder) *DecoderReader {
	if d == nil {
		panic("codecreg: nil decoder")
	}
	return &DecoderReader{decoder: d}
}

// Decoder returns the wrapped serialization decoder.
func (r *DecoderReader) Decoder() Decoder { return r.decoder }

func (r *DecoderReader) CanRead(t reflect.Type, contentType string) bool {
	return r.decoder.CanDecode(t, contentType)
}

func (r *DecoderReader) Read(t reflect.Type, contentType string, body io.Reader) (any, error) {
	limit := DefaultMaxInMemorySize
	if m, ok := r.decoder.(interface{ MaxInMemorySize() int }); ok {
		limit = m.MaxInMemorySize()
	}
	data, err := readAllLimited(body, limit)
	if err != nil {
		return nil, err
	}
	return r.decoder.Decode(data, t)
}

const formMIMEType = "application/x-www-form-urlencoded"

// FormReader reads application/x-www-form-urlencoded bodies into
// url.Values.
type FormReader struct {
	MemoryLimit
	loggingDetails bool
}

func NewFormReader() *FormReader { return &FormReader{} }

func (r *FormReader) EnableLoggingDetails(enable bool) { r.loggingDetails = enable }

// LoggingDetails reports whether form field values may appear in logs.
func (r *FormReader) LoggingDetails() bool { return r.loggingDetails }

func (r *FormReader) CanRead(t reflect.Type, contentType string) bool {
	return t == valuesType && MatchesMIMEType(formMIMEType, contentType)
}

func (r *FormReader) Read(t reflect.Type, contentType string, body io.Reader) (any, error) {
	data, err := readAllLimited(body, r.MaxInMemorySize())
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return values, nil
}

var multipartMIMETypes = []string{"multipart/form-data", "multipart/mixed"}

// PartReader reads a multipart body into the ordered list of its parts.
// The max-in-memory size applies to each individual part.
type PartReader struct {
	MemoryLimit
	loggingDetails bool
}

func NewPartReader() *PartReader { return &PartReader{} }

func (r *PartReader) EnableLoggingDetails(enable bool) { r.loggingDetails = enable }

func (r *PartReader) LoggingDetails() bool { return r.loggingDetails }

func (r *PartReader) CanRead(t reflect.Type, contentType string) bool {
	return t == partsType && MatchesAnyMIMEType(multipartMIMETypes, contentType)
}

func (r *PartReader) Read(t reflect.Type, contentType string, body io.Reader) (any, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing multipart boundary", ErrInvalidMessage)
	}
	mr := multipart.NewReader(body, boundary)
	var parts []Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		data, err := readAllLimited(p, r.MaxInMemorySize())
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{
			Name:     p.FormName(),
			FileName: p.FileName(),
			Header:   p.Header,
			Data:     data,
		})
	}
	return parts, nil
}

// MultipartReader reads a multipart body into a MultipartForm, grouping
// parts by field name. It delegates the actual parsing to a nested
// PartReader, which receives propagated configuration through
// NestedCodecs.
type MultipartReader struct {
	partReader     *PartReader
	loggingDetails bool
}

func NewMultipartReader(partReader *PartReader) *MultipartReader {
	if partReader == nil {
		panic("codecreg: nil part reader")
	}
	return &MultipartReader{partReader: partReader}
}

// PartReader returns the nested reader used for individual parts.
func (r *MultipartReader) PartReader() *PartReader { return r.partReader }

func (r *MultipartReader) NestedCodecs() []any { return []any{r.partReader} }

func (r *MultipartReader) EnableLoggingDetails(enable bool) { r.loggingDetails = enable }

func (r *MultipartReader) LoggingDetails() bool { return r.loggingDetails }

func (r *MultipartReader) CanRead(t reflect.Type, contentType string) bool {
	return t == multipartFormType && MatchesAnyMIMEType(multipartMIMETypes, contentType)
}

func (r *MultipartReader) Read(t reflect.Type, contentType string, body io.Reader) (any, error) {
	v, err := r.partReader.Read(partsType, contentType, body)
	if err != nil {
		return nil, err
	}
	form := make(MultipartForm)
	for _, p := range v.([]Part) {
		form[p.Name] = append(form[p.Name], p)
	}
	return form, nil
}

const sseMIMEType = "text/event-stream"

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// SSEReader reads a text/event-stream body into a []ServerSentEvent. Data
// fields that the nested decoder can handle (JSON payloads) are decoded
// into structured values; everything else is kept as the raw string.
type SSEReader struct {
	MemoryLimit
	decoder Decoder
}

// NewSSEReader wraps decoder, which may be nil to disable structured data
// decoding.
func NewSSEReader(decoder Decoder) *SSEReader {
	return &SSEReader{decoder: decoder}
}

// Decoder returns the nested data-field decoder, or nil.
func (r *SSEReader) Decoder() Decoder { return r.decoder }

func (r *SSEReader) NestedCodecs() []any {
	if r.decoder == nil {
		return nil
	}
	return []any{r.decoder}
}

func (r *SSEReader) CanRead(t reflect.Type, contentType string) bool {
	return t == eventsType && MatchesMIMEType(sseMIMEType, contentType)
}

func (r *SSEReader) Read(t reflect.Type, contentType string, body io.Reader) (any, error) {
	raw, err := readAllLimited(body, r.MaxInMemorySize())
	if err != nil {
		return nil, err
	}
	var events []ServerSentEvent
	var ev ServerSentEvent
	var data []string
	flush := func() {
		if ev == (ServerSentEvent{}) && data == nil {
			return
		}
		ev.Data = r.decodeData(strings.Join(data, "\n"))
		events = append(events, ev)
		ev = ServerSentEvent{}
		data = nil
	}
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(nil, len(raw)+1)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "id:"):
			ev.ID = strings.TrimPrefix(strings.TrimPrefix(line, "id:"), " ")
		case strings.HasPrefix(line, "event:"):
			ev.Event = strings.TrimPrefix(strings.TrimPrefix(line, "event:"), " ")
		case strings.HasPrefix(line, "retry:"):
			ev.Retry = strings.TrimPrefix(strings.TrimPrefix(line, "retry:"), " ")
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return events, nil
}

func (r *SSEReader) decodeData(data string) any {
	if data == "" {
		return ""
	}
	if r.decoder != nil && looksStructured(data) && r.decoder.CanDecode(anyType, "application/json") {
		if v, err := r.decoder.Decode([]byte(data), anyType); err == nil {
			return v
		}
	}
	return data
}

func looksStructured(data string) bool {
	return strings.HasPrefix(data, "{") || strings.HasPrefix(data, "[")
}
