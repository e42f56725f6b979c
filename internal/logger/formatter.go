package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// buildLogEntry wraps one line in the Loki push API "streams" envelope.
func buildLogEntry(job, level, message string, attrs []slog.Attr, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"streams": []map[string]interface{}{
			{
				"stream": map[string]string{
					"level": level,
					"job":   job,
				},
				"values": [][]string{
					{
						fmt.Sprintf("%d", now.UnixNano()),
						buildLogLine(level, message, attrs, now),
					},
				},
			},
		},
	}
}

func buildLogLine(level, message string, attrs []slog.Attr, now time.Time) string {
	logData := map[string]interface{}{
		"level":   level,
		"message": message,
		"time":    now.Format(time.RFC3339),
	}

	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Any()
	}

	jsonBytes, err := json.Marshal(logData)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"message":%q}`, level, message)
	}
	return string(jsonBytes)
}
