package main

import (
	"bytes"
	"compress/gzip"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	models "github.com/Schera-ole/agentmon/internal/model"
	"github.com/Schera-ole/agentmon/internal/simulator"
)

func countHash(compressedBody []byte, key string) []byte {
	keyBytes := []byte(key)
	h := hmac.New(sha256.New, keyBytes)
	h.Write(compressedBody)
	return h.Sum(nil)
}

func countHashString(compressedBody []byte, key string) string {
	hash := countHash(compressedBody, key)
	return fmt.Sprintf("%x", hash)
}

func isRetryableError(err error) bool {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection reset by peer") {
		return true
	}

	return false
}

func sendBatch(client *http.Client, batch []models.MetricsDTO, url string, key string) error {
	jsonData, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("error creating json")
	}
	var compressedData bytes.Buffer
	gzipWriter := gzip.NewWriter(&compressedData)
	if _, err := gzipWriter.Write(jsonData); err != nil {
		return fmt.Errorf("error compressing data: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("error closing gzip writer: %w", err)
	}
	var hash string
	if key != "" {
		hash = countHashString(compressedData.Bytes(), key)
	}

	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}
	var lastErr error

	for attempt := 0; attempt < 4; attempt++ {
		if attempt > 0 {
			if attempt <= len(delays) {
				delay := delays[attempt-1]
				log.Printf("Retry attempt %d after %v delay", attempt, delay)
				time.Sleep(delay)
			}
		}

		request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(compressedData.Bytes()))
		if err != nil {
			lastErr = fmt.Errorf("error creating request for %s: %w", url, err)
			continue
		}
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set("Content-Encoding", "gzip")
		if key != "" {
			request.Header.Set("HashSHA256", hash)
		}

		response, err := client.Do(request)
		if err != nil {
			lastErr = fmt.Errorf("error sending request for %s: %w", url, err)
			if isRetryableError(err) {
				continue
			}
			return lastErr
		}

		body, err := io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error reading response body: %w", err)
			continue
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("server returned error status %d: %s", response.StatusCode, string(body))
		// Retry only server-side failures
		if response.StatusCode >= 500 && response.StatusCode < 600 {
			continue
		}
		return lastErr
	}

	return fmt.Errorf("failed to send batch after 4 attempts: %w", lastErr)
}

func worker(client *http.Client, url string, key string, jobs <-chan []models.MetricsDTO) {
	for job := range jobs {
		err := sendBatch(client, job, url, key)
		if err != nil {
			log.Printf("Error sending batch: %v", err)
		}
	}
}

func main() {
	simulatorConfig, err := simulator.NewSimulatorConfig()
	if err != nil {
		log.Fatal("Failed to parse configuration: ", err)
	}

	client := &http.Client{}

	url := "http://" + simulatorConfig.Address + "/record"
	jobs := make(chan []models.MetricsDTO, 20)

	for w := 1; w <= simulatorConfig.RateLimit; w++ {
		go worker(client, url, simulatorConfig.Key, jobs)
	}

	for i := 0; i < simulatorConfig.AgentCount; i++ {
		agentID := fmt.Sprintf("agent-%d", i+1)
		go func() {
			for {
				jobs <- simulator.AgentBatch(agentID)
				time.Sleep(time.Duration(simulatorConfig.TickInterval) * time.Second)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	// Block until signal received
	<-sigChan
	log.Println("Shutting down...")
	close(jobs)
}
