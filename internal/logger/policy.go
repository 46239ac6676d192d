package logger

import "strings"

const redacted = "***"

// loggedHeaders are the HTTP headers and gRPC metadata keys copied into log lines.
var loggedHeaders = map[string]bool{
	"content-type":   true,
	"content-length": true,
	"user-agent":     true,
	"origin":         true,
	"traceparent":    true,
	"x-trace-id":     true,
	"x-request-id":   true,
	"x-resolver":     true,
	"authorization":  true,
	"cookie":         true,
	"set-cookie":     true,
}

var secretHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
}

var secretFieldHints = []string{"password", "token", "secret", "apikey", "api_key"}

// headerValue returns the value to log for a header, and false when the header is not logged.
func headerValue(name string, values []string) (string, bool) {
	name = strings.ToLower(name)
	if !loggedHeaders[name] {
		return "", false
	}
	if secretHeaders[name] {
		return redacted, true
	}
	return strings.Join(values, ", "), true
}

// isSecretField reports whether the last segment of a flattened key names a credential.
func isSecretField(key string) bool {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	key = strings.ToLower(key)
	for _, hint := range secretFieldHints {
		if strings.Contains(key, hint) {
			return true
		}
	}
	return false
}
