package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func attrMap(attrs []slog.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestEnrich_RequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	got := attrMap(enrich(ctx))
	assert.Equal(t, "req-1", got["request_id"])
	assert.NotContains(t, got, "trace_id")
}

func TestHeaderAttrs_Redacts(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer abc")
	hdr.Set("X-Request-ID", "req-1")
	hdr.Set("X-Internal", "skip")

	got := attrMap(HeaderAttrs(hdr))
	assert.Equal(t, "***", got["http.header.authorization"])
	assert.Equal(t, "req-1", got["http.header.x-request-id"])
	assert.NotContains(t, got, "http.header.x-internal")
}

func TestLogHTTPRequest_KeepsBodyReadable(t *testing.T) {
	body := `{"query":"YA25","categories":["Mount","Base","Cable"],"password":"hunter2"}`
	r := httptest.NewRequest(http.MethodPost, "/products/search?debug=1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	got := attrMap(LogHTTPRequest(context.Background(), r, "incoming::request"))
	assert.Equal(t, "YA25", got["http.body.query"])
	assert.Equal(t, "3", got["http.body.categories.len"])
	assert.Equal(t, "Mount", got["http.body.categories.0"])
	assert.NotContains(t, got, "http.body.categories.2")
	assert.Equal(t, "***", got["http.body.password"])
	assert.Equal(t, "1", got["http.query.debug"])

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
	assert.Equal(t, "YA25", decoded["query"])
}

func TestLogHTTPResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/products/YA25", nil)
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")

	got := attrMap(LogHTTPResponse(context.Background(), r, hdr, 404, bytes.NewBufferString(`{"message":"product not found"}`), 3, "incoming::response"))
	assert.Equal(t, "404", got["http.status"])
	assert.Equal(t, "product not found", got["http.body.message"])
}

func TestDecodeBody_Binary(t *testing.T) {
	attrs, err := DecodeBody("application/octet-stream", bytes.Repeat([]byte{1}, 300))
	require.NoError(t, err)
	got := attrMap(attrs)
	assert.Equal(t, "300", got["http.body.size_bytes"])
}

func TestLogGRPC(t *testing.T) {
	md := metadata.Pairs("authorization", "secret", "x-request-id", "req-2")
	req := attrMap(LogGRPCRequest(context.Background(), "/catalog.v1.CatalogService/GetProduct", md, wrapperspb.String("YA25"), "incoming::request"))
	assert.Equal(t, "***", req["grpc.header.authorization"])
	assert.Equal(t, "YA25", req["grpc.request"])

	resp := attrMap(LogGRPCResponse(context.Background(), "/catalog.v1.CatalogService/GetProduct", codes.NotFound, nil, 5*time.Millisecond, "incoming::response"))
	assert.Equal(t, "NotFound", resp["grpc.code"])
}

func TestBuildLogEntry(t *testing.T) {
	t.Setenv("APP_NAME", "catalog-test")
	entry := buildLogEntry("info", "hello", []slog.Attr{slog.String("k", "v")})

	streams := entry["streams"].([]map[string]interface{})
	require.Len(t, streams, 1)
	assert.Equal(t, "catalog-test", streams[0]["stream"].(map[string]string)["job"])

	line := streams[0]["values"].([][]string)[0][1]
	assert.Contains(t, line, `"k":"v"`)
	assert.Contains(t, line, `"message":"hello"`)
}

func TestIsSecretField(t *testing.T) {
	assert.True(t, isSecretField("http.body.password"))
	assert.True(t, isSecretField("http.body.user.apiKey"))
	assert.True(t, isSecretField("access_token"))
	assert.False(t, isSecretField("http.body.code"))
	assert.False(t, isSecretField("http.body.password.len.0"))
}

func TestQueryAttrs_RedactsSecrets(t *testing.T) {
	got := attrMap(QueryAttrs(map[string][]string{"code": {"YA25"}, "token": {"abc"}, "empty": {}}))
	assert.Equal(t, "YA25", got["http.query.code"])
	assert.Equal(t, "***", got["http.query.token"])
	assert.NotContains(t, got, "http.query.empty")
}

func TestCaptureBody_KeepsRemainderPastLimit(t *testing.T) {
	payload := strings.Repeat("a", MaxBodyLogged+10)
	r := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(payload))

	head, err := CaptureBody(r)
	require.NoError(t, err)
	assert.Len(t, head, MaxBodyLogged)

	var rest bytes.Buffer
	_, err = rest.ReadFrom(r.Body)
	require.NoError(t, err)
	assert.Equal(t, len(payload), rest.Len())
}

func TestDecodeBody_Text(t *testing.T) {
	attrs, err := DecodeBody("text/plain; charset=utf-8", []byte("not found"))
	require.NoError(t, err)
	assert.Equal(t, "not found", attrMap(attrs)["http.body"])
}

func TestLevelFromEnv(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromEnv("debug"))
	assert.Equal(t, slog.LevelWarn, levelFromEnv(" WARN "))
	assert.Equal(t, slog.LevelInfo, levelFromEnv(""))
	assert.Equal(t, slog.LevelInfo, levelFromEnv("loud"))
}
