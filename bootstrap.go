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
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credential is the outcome of a successful CSRF handshake. It is created
// once per run, never mutated afterwards, and every authenticated request
// echoes the token back in both the cookie and the x-csrftoken header.
type Credential struct {
	CSRFToken string
	Cookie    string
}

// Bootstrap performs the unauthenticated probe against the server root URL
// and harvests the csrftoken attribute from its Set-Cookie response. A failed
// handshake aborts the run; there is no retry at this layer.
func Bootstrap(ctx context.Context, serverURL string, logger *Logger) (*Credential, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, &BootstrapError{URL: serverURL, Message: "invalid server URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", serverURL, nil)
	if err != nil {
		return nil, &BootstrapError{URL: serverURL, Message: "failed to create handshake request", Err: err}
	}
	req.Host = parsed.Host
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", GetUserAgent())

	client := &http.Client{Timeout: BootstrapTimeout}

	startTime := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &BootstrapError{URL: serverURL, Message: "handshake request failed", Err: err}
	}
	defer resp.Body.Close()

	logger.LogAPIRequest("GET", "bootstrap", resp.StatusCode, time.Since(startTime).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BootstrapError{
			URL:        serverURL,
			StatusCode: resp.StatusCode,
			Message:    "handshake returned non-success status",
		}
	}

	setCookies := resp.Header.Values("Set-Cookie")
	if len(setCookies) == 0 {
		return nil, &BootstrapError{URL: serverURL, Message: "no Set-Cookie header in handshake response"}
	}

	for _, header := range setCookies {
		token, ok := cookieAttribute(header, "csrftoken")
		if !ok {
			continue
		}
		logger.Debug("CSRF token harvested", "token_length", len(token))
		return &Credential{
			CSRFToken: token,
			Cookie:    "csrftoken=" + token,
		}, nil
	}

	return nil, &BootstrapError{URL: serverURL, Message: "csrftoken attribute missing from Set-Cookie"}
}

// cookieAttribute extracts a named attribute value from a raw Set-Cookie
// header: split on ';', split each attribute on the first '=', trim
// whitespace, URL-decode the value. Attribute order is irrelevant.
func cookieAttribute(header, name string) (string, bool) {
	for _, attr := range strings.Split(header, ";") {
		key, value, found := strings.Cut(attr, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) != name {
			continue
		}
		value = strings.TrimSpace(value)
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		return value, true
	}
	return "", false
}
