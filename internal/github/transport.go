// Copyright 2025 TechAtlas, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/techatlashq/techatlas/internal/giterror"
	"github.com/techatlashq/techatlas/pkg/version"
)

// maxResponseBytes caps GraphQL response bodies. Tree blobs can be
// large; 10MB is far above any legitimate page.
const maxResponseBytes = 10 * 1024 * 1024

// authTransport adds the bearer token, a User-Agent header, and safety
// limits to every request. It also converts explicit rate-limit
// responses into a typed error carrying the reset hint so the retry
// policy can wait exactly as long as GitHub asks.
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("User-Agent", fmt.Sprintf("techatlas/%s", version.Version))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if isRateLimited(resp) {
		reset := rateLimitReset(resp)
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &giterror.RateLimitError{Reset: reset}
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseBytes,
		}
	}

	return resp, nil
}

// isRateLimited detects both primary (403 with an exhausted quota) and
// secondary (429) rate-limit responses.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// rateLimitReset reads the reset hint from Retry-After (seconds) or
// X-RateLimit-Reset (unix epoch). Zero time when neither is present.
func rateLimitReset(resp *http.Response) time.Time {
	if after := resp.Header.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs >= 0 {
			return time.Now().Add(time.Duration(secs) * time.Second)
		}
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil && epoch > 0 {
			return time.Unix(epoch, 0)
		}
	}
	return time.Time{}
}

// limitedReader wraps a ReadCloser with a size limit to prevent
// excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}
