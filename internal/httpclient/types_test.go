package httpclient_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/crate-sync/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		url           string
		message       string
		expectedError string
		temporary     bool
	}{
		{
			name:          "not found",
			statusCode:    http.StatusNotFound,
			url:           "http://example.com/github.csv",
			message:       "Not Found",
			expectedError: "HTTP 404 for URL http://example.com/github.csv: Not Found",
		},
		{
			name:          "server error is temporary",
			statusCode:    http.StatusInternalServerError,
			url:           "http://example.com",
			message:       "Internal Server Error",
			expectedError: "HTTP 500 for URL http://example.com: Internal Server Error",
			temporary:     true,
		},
		{
			name:          "rate limited is temporary",
			statusCode:    http.StatusTooManyRequests,
			url:           "http://example.com",
			message:       "Too Many Requests",
			expectedError: "HTTP 429 for URL http://example.com: Too Many Requests",
			temporary:     true,
		},
		{
			name:          "empty message",
			statusCode:    http.StatusForbidden,
			url:           "http://example.com",
			expectedError: "HTTP 403 for URL http://example.com: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := httpclient.NewHTTPError(tt.statusCode, tt.url, tt.message)
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())

			var httpErr *httpclient.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.temporary, httpErr.Temporary())
		})
	}
}
