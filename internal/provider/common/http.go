package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v5"

	"github.com/jmalmgren/repodeck/internal/logger"
)

const maxAttempts = 3

// GetJSON performs a GET against url with the given headers and decodes the
// JSON response body into v. Network errors and 5xx responses are retried
// with exponential backoff; any other non-2xx response is returned
// immediately as an *APIError carrying the status code.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header, v interface{}) error {
	if client == nil {
		client = http.DefaultClient
	}

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		for name, values := range header {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		logger.Log("HTTP: GET %s - %s", req.URL.Path, resp.Status)

		switch {
		case resp.StatusCode >= 500:
			return nil, NewAPIError(fmt.Sprintf("request failed: %s", resp.Status), resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, backoff.Permanent(NewAPIError(fmt.Sprintf("request failed: %s", resp.Status), resp.StatusCode))
		}
		return data, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		logger.LogError("DECODE_RESPONSE", url, err)
		return NewAPIError("failed to decode response body", 0)
	}
	return nil
}

func GetString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
