package codecreg

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// EncoderWriter adapts an Encoder to the MessageWriter interface.
type EncoderWriter struct {
	encoder Encoder
}

func NewEncoderWriter(e Encoder) *EncoderWriter {
	if e == nil {
		panic("codecreg: nil encoder")
	}
	return &EncoderWriter{encoder: e}
}

// Encoder returns the wrapped serialization encoder.
func (w *EncoderWriter) Encoder() Encoder { return w.encoder }

func (w *EncoderWriter) CanWrite(t reflect.Type, contentType string) bool {
	return w.encoder.CanEncode(t, contentType)
}

func (w *EncoderWriter) Write(out io.Writer, contentType string, v any) error {
	data, err := w.encoder.Encode(v)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// FormWriter writes url.Values as an application/x-www-form-urlencoded
// body.
type FormWriter struct {
	loggingDetails bool
}

func NewFormWriter() *FormWriter { return &FormWriter{} }

func (w *FormWriter) EnableLoggingDetails(enable bool) { w.loggingDetails = enable }

// LoggingDetails reports whether form field values may appear in logs.
func (w *FormWriter) LoggingDetails() bool { return w.loggingDetails }

func (w *FormWriter) CanWrite(t reflect.Type, contentType string) bool {
	return t == valuesType && MatchesMIMEType(formMIMEType, contentType)
}

func (w *FormWriter) Write(out io.Writer, contentType string, v any) error {
	values, ok := v.(url.Values)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	_, err := io.WriteString(out, values.Encode())
	return err
}

// MultipartWriter writes a MultipartForm as a multipart/form-data body. A
// nested FormWriter handles plain form submissions when every part is a
// simple text field without headers or file names; it also receives
// propagated configuration through NestedCodecs.
type MultipartWriter struct {
	formWriter     *FormWriter
	loggingDetails bool
}

func NewMultipartWriter(formWriter *FormWriter) *MultipartWriter {
	if formWriter == nil {
		panic("codecreg: nil form writer")
	}
	return &MultipartWriter{formWriter: formWriter}
}

// FormWriter returns the nested writer used for plain form submissions.
func (w *MultipartWriter) FormWriter() *FormWriter { return w.formWriter }

func (w *MultipartWriter) NestedCodecs() []any { return []any{w.formWriter} }

func (w *MultipartWriter) EnableLoggingDetails(enable bool) { w.loggingDetails = enable }

func (w *MultipartWriter) LoggingDetails() bool { return w.loggingDetails }

func (w *MultipartWriter) CanWrite(t reflect.Type, contentType string) bool {
	if t == valuesType && MatchesMIMEType(formMIMEType, contentType) {
		return w.formWriter.CanWrite(t, contentType)
	}
	return t == multipartFormType && MatchesAnyMIMEType(multipartMIMETypes, contentType)
}

func (w *MultipartWriter) Write(out io.Writer, contentType string, v any) error {
	if values, ok := v.(url.Values); ok {
		return w.formWriter.Write(out, contentType, values)
	}
	form, ok := v.(MultipartForm)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	mw := multipart.NewWriter(out)
	// Field names are written in sorted order so identical input yields an
	// identical body.
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, p := range form[name] {
			header := make(textproto.MIMEHeader, len(p.Header)+1)
			for k, vals := range p.Header {
				header[k] = vals
			}
			if header.Get("Content-Disposition") == "" {
				disposition := fmt.Sprintf("form-data; name=%q", name)
				if p.FileName != "" {
					disposition += fmt.Sprintf("; filename=%q", p.FileName)
				}
				header.Set("Content-Disposition", disposition)
			}
			pw, err := mw.CreatePart(header)
			if err != nil {
				_ = mw.Close()
				return err
			}
			if _, err := pw.Write(p.Data); err != nil {
				_ = mw.Close()
				return err
			}
		}
	}
	return mw.Close()
}

// Boundary exposes a fresh multipart boundary for callers that need to set
// the Content-Type header before writing.
func (w *MultipartWriter) Boundary() string {
	var sb strings.Builder
	mw := multipart.NewWriter(&sb)
	return mw.Boundary()
}

// SSEWriter writes a []ServerSentEvent as a text/event-stream body. Data
// values the nested encoder can handle are serialized through it;
// everything else is written with its default string form.
type SSEWriter struct {
	encoder Encoder
}

// NewSSEWriter wraps encoder, which may be nil to disable structured data
// encoding.
func NewSSEWriter(encoder Encoder) *SSEWriter {
	return &SSEWriter{encoder: encoder}
}

// Encoder returns the nested data-field encoder, or nil.
func (w *SSEWriter) Encoder() Encoder { return w.encoder }

func (w *SSEWriter) NestedCodecs() []any {
	if w.encoder == nil {
		return nil
	}
	return []any{w.encoder}
}

func (w *SSEWriter) CanWrite(t reflect.Type, contentType string) bool {
	return t == eventsType && MatchesMIMEType(sseMIMEType, contentType)
}

func (w *SSEWriter) Write(out io.Writer, contentType string, v any) error {
	events, ok := v.([]ServerSentEvent)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	for _, ev := range events {
		if ev.ID != "" {
			if _, err := fmt.Fprintf(out, "id: %s\n", ev.ID); err != nil {
				return err
			}
		}
		if ev.Event != "" {
			if _, err := fmt.Fprintf(out, "event: %s\n", ev.Event); err != nil {
				return err
			}
		}
		if ev.Retry != "" {
			if _, err := fmt.Fprintf(out, "retry: %s\n", ev.Retry); err != nil {
				return err
			}
		}
		data, err := w.encodeData(ev.Data)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(data, "\n") {
			if _, err := fmt.Fprintf(out, "data: %s\n", line); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (w *SSEWriter) encodeData(data any) (string, error) {
	switch d := data.(type) {
	case nil:
		return "", nil
	case string:
		return d, nil
	}
	if w.encoder != nil && w.encoder.CanEncode(reflect.TypeOf(data), "application/json") {
		b, err := w.encoder.Encode(data)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprint(data), nil
}
