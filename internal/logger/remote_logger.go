package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

type remoteTarget struct {
	uri string
	job string
}

var (
	remoteMu sync.RWMutex
	remote   remoteTarget
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// SetRemote enables background shipping of every log line to a Loki push
// endpoint. An empty uri disables shipping.
func SetRemote(uri, job string) {
	remoteMu.Lock()
	defer remoteMu.Unlock()
	remote = remoteTarget{uri: uri, job: job}
}

func currentRemote() remoteTarget {
	remoteMu.RLock()
	defer remoteMu.RUnlock()
	return remote
}

func sendLog(level, message string, attrs []slog.Attr) {
	target := currentRemote()
	if target.uri == "" {
		return
	}

	// Built before the goroutine so attrs are not shared with the caller.
	jsonData, err := json.Marshal(buildLogEntry(target.job, level, message, attrs, time.Now()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal for remote log entry: %v\n", err)
		return
	}

	go func() {
		req, err := http.NewRequest(http.MethodPost, target.uri, bytes.NewReader(jsonData))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create request for remote log: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send to remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "Remote log returned error status: %d\n", resp.StatusCode)
		}
	}()
}
