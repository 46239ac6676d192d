package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const defaultJob = "parts-catalog"

func jobName() string {
	if name := os.Getenv("APP_NAME"); name != "" {
		return name
	}
	return defaultJob
}

// buildLogEntry wraps one log line in a Loki push payload.
func buildLogEntry(level, message string, attrs []slog.Attr) map[string]interface{} {
	return buildLogEntryAt(time.Now(), level, message, attrs)
}

func buildLogEntryAt(now time.Time, level, message string, attrs []slog.Attr) map[string]interface{} {
	return map[string]interface{}{
		"streams": []map[string]interface{}{
			{
				"stream": map[string]string{
					"level": level,
					"job":   jobName(),
				},
				"values": [][]string{
					{
						strconv.FormatInt(now.UnixNano(), 10),
						buildLogLine(now, level, message, attrs),
					},
				},
			},
		},
	}
}

func buildLogLine(now time.Time, level, message string, attrs []slog.Attr) string {
	logData := map[string]interface{}{
		"level":   level,
		"message": message,
		"time":    now.Format(time.RFC3339),
	}
	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Any()
	}

	jsonBytes, _ := json.Marshal(logData)
	return string(jsonBytes)
}
