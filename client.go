// Copyright 2026 The vibefetch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// GraphQLClient executes query documents against one iQunet endpoint with the
// credential obtained by Bootstrap. The credential is read-only after
// construction; the mutex only guards rate-limit bookkeeping and metrics so
// callers may issue Execute concurrently.
type GraphQLClient struct {
	URL  string
	cred *Credential

	client      *http.Client
	minInterval time.Duration
	maxRetries  int
	backoffBase time.Duration
	debug       bool
	logger      *Logger
	metrics     *APIMetrics

	mu              sync.Mutex
	lastRequestTime time.Time
}

// GraphQLRequest is the POST body of every GraphQL call
type GraphQLRequest struct {
	OperationName string                 `json:"operationName,omitempty"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// NewGraphQLClient builds an authenticated client from a bootstrap credential.
// Bootstrap must have completed before any Execute call is issued.
func NewGraphQLClient(serverURL string, cred *Credential, debug bool) *GraphQLClient {
	logger := NewLogger(debug).WithComponent("graphql_client")
	return &GraphQLClient{
		URL:         serverURL,
		cred:        cred,
		minInterval: HTTPMinInterval,
		maxRetries:  HTTPMaxRetries,
		backoffBase: time.Second,
		debug:       debug,
		logger:      logger,
		metrics:     NewAPIMetrics(),
		client: &http.Client{
			Timeout: HTTPClientTimeout,
		},
	}
}

// Metrics returns the request counters collected so far
func (c *GraphQLClient) Metrics() *APIMetrics {
	return c.metrics
}

// Execute posts a query document and decodes the data payload into out.
// A GraphQL errors array becomes a ServerError with the server messages
// untouched; network, HTTP and timeout failures become a TransportError.
func (c *GraphQLClient) Execute(ctx context.Context, operation, query string, variables map[string]interface{}, out interface{}) error {
	body, err := c.executeWithRetry(ctx, operation, query, variables, 0)
	if err != nil {
		return err
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return NewTransportError(c.URL, operation, 0, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, gqlErr := range envelope.Errors {
			messages[i] = gqlErr.Message
		}
		return &ServerError{Operation: operation, Messages: messages}
	}

	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return NewTransportError(c.URL, operation, 0, err)
		}
	}

	return nil
}

func (c *GraphQLClient) executeWithRetry(ctx context.Context, operation, query string, variables map[string]interface{}, attempt int) ([]byte, error) {
	c.enforceRateLimit()

	requestBody := GraphQLRequest{
		OperationName: "",
		Query:         query,
		Variables:     variables,
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, NewTransportError(c.URL, operation, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, NewTransportError(c.URL, operation, 0, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", c.cred.Cookie)
	req.Header.Set("x-csrftoken", c.cred.CSRFToken)
	req.Header.Set("User-Agent", GetUserAgent())

	c.debugLogRequest("POST", operation, req.Header, bodyBytes)

	startTime := time.Now()
	c.mu.Lock()
	c.lastRequestTime = startTime
	c.mu.Unlock()

	resp, err := c.client.Do(req)
	duration := time.Since(startTime).Seconds()

	c.metrics.CountRequest(operation, duration)

	if err != nil {
		if attempt < c.maxRetries && ctx.Err() == nil {
			backoff := c.calculateBackoff(attempt)
			c.logger.Warn("Request failed, retrying",
				"operation", operation,
				"attempt", attempt+1,
				"max_attempts", c.maxRetries+1,
				"backoff_ms", backoff.Milliseconds(),
				"error", err.Error(),
			)
			time.Sleep(backoff)
			return c.executeWithRetry(ctx, operation, query, variables, attempt+1)
		}
		return nil, NewTransportError(c.URL, operation, 0, err)
	}
	defer resp.Body.Close()

	c.logger.LogAPIRequest("POST", operation, resp.StatusCode, duration)

	if c.shouldRetry(resp.StatusCode) && attempt < c.maxRetries {
		backoff := c.calculateBackoffFromResponse(resp, attempt)
		c.logger.Warn("Retrying due to status code",
			"operation", operation,
			"status_code", resp.StatusCode,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1,
			"backoff_ms", backoff.Milliseconds(),
		)
		io.Copy(io.Discard, resp.Body)
		time.Sleep(backoff)
		return c.executeWithRetry(ctx, operation, query, variables, attempt+1)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(c.URL, operation, resp.StatusCode, err)
	}

	c.debugLogResponse(resp, respBody, duration)

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransportError(c.URL, operation, resp.StatusCode, nil)
	}

	return respBody, nil
}

func (c *GraphQLClient) enforceRateLimit() {
	c.mu.Lock()
	last := c.lastRequestTime
	c.mu.Unlock()

	if !last.IsZero() {
		elapsed := time.Since(last)
		if elapsed < c.minInterval {
			sleep := c.minInterval - elapsed
			c.logger.Debug("Rate limiting",
				"sleep_ms", sleep.Milliseconds(),
			)
			c.metrics.CountRateLimitSleep(sleep)
			time.Sleep(sleep)
		}
	}
}

func (c *GraphQLClient) shouldRetry(statusCode int) bool {
	return isRetryableStatus(statusCode)
}

func (c *GraphQLClient) calculateBackoff(attempt int) time.Duration {
	base := float64(c.backoffBase)
	backoff := base * math.Pow(2, float64(attempt))
	jitter := rand.Float64() * 0.1 * backoff
	return time.Duration(backoff + jitter)
}

func (c *GraphQLClient) calculateBackoffFromResponse(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return c.calculateBackoff(attempt)
}

// debugLogRequest logs detailed request information in debug mode
func (c *GraphQLClient) debugLogRequest(method, operation string, headers http.Header, bodyBytes []byte) {
	if !c.debug {
		return
	}

	// Mask the token in logs
	maskedHeaders := make(map[string]string)
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if key == "Cookie" || key == "X-Csrftoken" {
			val := values[0]
			if len(val) > 12 {
				maskedHeaders[key] = val[:6] + "..." + val[len(val)-4:]
			} else {
				maskedHeaders[key] = "***"
			}
		} else {
			maskedHeaders[key] = values[0]
		}
	}

	c.logger.Debug("→ HTTP Request",
		"method", method,
		"operation", operation,
		"url", c.URL,
		"headers", maskedHeaders,
	)

	if len(bodyBytes) > 0 {
		bodyStr := string(bodyBytes)
		if len(bodyStr) > 500 {
			bodyStr = bodyStr[:500] + "... (truncated)"
		}
		c.logger.Debug("  Request Body", "body", bodyStr)
	}
}

// debugLogResponse logs detailed response information in debug mode
func (c *GraphQLClient) debugLogResponse(resp *http.Response, bodyPreview []byte, duration float64) {
	if !c.debug {
		return
	}

	c.logger.Debug("← HTTP Response",
		"status", resp.StatusCode,
		"status_text", resp.Status,
		"duration_ms", duration*1000,
		"content_type", resp.Header.Get("Content-Type"),
	)

	if len(bodyPreview) > 0 {
		bodyStr := string(bodyPreview)
		if len(bodyStr) > 500 {
			bodyStr = bodyStr[:500] + "... (truncated)"
		}
		c.logger.Debug("  Response Body", "body", bodyStr)
	}
}
