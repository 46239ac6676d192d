package logger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// MaxBodyLogged caps how much of a body is buffered for logging (1 MiB).
const MaxBodyLogged = 1 << 20

// Search pages and compatibles lists are long; only their head is logged.
const maxArrayItemsLogged = 2

const maxBinarySample = 256

// CaptureBody reads up to MaxBodyLogged bytes of r.Body and leaves an equivalent body in place.
func CaptureBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyLogged))
	if err != nil {
		return nil, err
	}
	// Whatever was not read stays behind the captured prefix.
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head, nil
}

func HeaderAttrs(hdr http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(hdr))
	for name, values := range hdr {
		if v, ok := headerValue(name, values); ok {
			attrs = append(attrs, slog.String("http.header."+strings.ToLower(name), v))
		}
	}
	return attrs
}

func QueryAttrs(q url.Values) []slog.Attr {
	return valuesAttrs("http.query.", q)
}

// DecodeBody turns a body into http.body.* attributes according to its media type.
func DecodeBody(contentType string, body []byte) ([]slog.Attr, error) {
	if len(body) == 0 {
		return nil, nil
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return jsonAttrs("http.body", body), nil
	case mediaType == "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		return valuesAttrs("http.body.", vals), nil
	case strings.HasPrefix(mediaType, "text/"):
		return []slog.Attr{slog.String("http.body", truncate(string(body)))}, nil
	default:
		return binaryAttrs(body), nil
	}
}

// valuesAttrs logs url-encoded values in key order, skipping keys without values.
func valuesAttrs(prefix string, vals url.Values) []slog.Attr {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		if len(vals[k]) == 0 {
			continue
		}
		v := strings.Join(vals[k], ",")
		if isSecretField(k) {
			v = redacted
		}
		attrs = append(attrs, slog.String(prefix+k, v))
	}
	return attrs
}

func jsonAttrs(prefix string, b []byte) []slog.Attr {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return []slog.Attr{slog.String(prefix, truncate(string(b)))}
	}
	attrs := make([]slog.Attr, 0, 8)
	flattenJSON(prefix, data, &attrs)
	return attrs
}

// flattenJSON emits one attribute per scalar leaf. Arrays log their length and first items; nulls are dropped.
func flattenJSON(key string, v any, dst *[]slog.Attr) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flattenJSON(key+"."+k, child, dst)
		}
	case []any:
		*dst = append(*dst, slog.Int(key+".len", len(t)))
		for i := 0; i < len(t) && i < maxArrayItemsLogged; i++ {
			flattenJSON(key+"."+strconv.Itoa(i), t[i], dst)
		}
	case nil:
	case string:
		if isSecretField(key) {
			t = redacted
		}
		*dst = append(*dst, slog.String(key, t))
	case float64:
		*dst = append(*dst, slog.Float64(key, t))
	case bool:
		*dst = append(*dst, slog.Bool(key, t))
	}
}

func binaryAttrs(b []byte) []slog.Attr {
	if len(b) <= maxBinarySample {
		return []slog.Attr{slog.String("http.body.base64", base64.StdEncoding.EncodeToString(b))}
	}
	return []slog.Attr{
		slog.Int("http.body.size_bytes", len(b)),
		slog.String("http.body.sample_base64", base64.StdEncoding.EncodeToString(b[:maxBinarySample])),
	}
}

func truncate(s string) string {
	const max = 2048
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func requestAttrs(r *http.Request, direction string) []slog.Attr {
	return []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.remote_addr", r.RemoteAddr),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
	}
}

// LogHTTPRequest builds attributes for the request line, headers, query and body.
func LogHTTPRequest(ctx context.Context, r *http.Request, direction string) []slog.Attr {
	attrs := requestAttrs(r, direction)
	attrs = append(attrs, HeaderAttrs(r.Header)...)
	attrs = append(attrs, QueryAttrs(r.URL.Query())...)

	body, err := CaptureBody(r)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	bodyAttrs, err := DecodeBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return append(attrs, bodyAttrs...)
}

// LogHTTPResponse builds attributes for a response whose body was buffered by the caller.
func LogHTTPResponse(ctx context.Context, req *http.Request, header http.Header, status int, body io.Reader, durationMs int64, direction string) []slog.Attr {
	attrs := append(requestAttrs(req, direction),
		slog.Int("http.status", status),
		slog.Int64("duration_ms", durationMs),
	)
	attrs = append(attrs, HeaderAttrs(header)...)

	if body == nil {
		return attrs
	}
	raw, err := io.ReadAll(io.LimitReader(body, MaxBodyLogged))
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	bodyAttrs, err := DecodeBody(header.Get("Content-Type"), raw)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return append(attrs, bodyAttrs...)
}
