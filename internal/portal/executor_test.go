package portal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// newTestExecutor builds an executor pointed at a test server with a fast
// retry schedule.
func newTestExecutor(baseURL string) *Executor {
	cfg := &contract.Config{
		BaseURL:        baseURL + "/",
		User:           "ada",
		Password:       "lovelace",
		ConnectRetries: 2,
		RequestTimeout: 2 * time.Second,
		RateLimit:      1000,
	}
	e := NewExecutor(cfg)
	e.retryWait = time.Millisecond
	return e
}

func TestExecutorUnknownEndpoint(t *testing.T) {
	e := newTestExecutor("http://localhost:1")
	_, err := e.Do(context.Background(), "rm_rf.cgi", url.Values{})
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestExecutorSuccess(t *testing.T) {
	var gotUser, gotPass, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotName = r.PostFormValue("name")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	form := url.Values{}
	form.Set("name", "ZTF20aaelulu")

	body, err := e.Do(context.Background(), EndpointPrintLightcurve, form)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "ada", gotUser)
	assert.Equal(t, "lovelace", gotPass)
	assert.Equal(t, "ZTF20aaelulu", gotName)
}

func TestExecutorRetriesOverloadedPortal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	body, err := e.Do(context.Background(), EndpointListPrograms, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecutorTerminalStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	_, err := e.Do(context.Background(), EndpointListPrograms, url.Values{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "Not Found")
	// Terminal statuses do not burn the retry schedule
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecutorInternalErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	_, err := e.Do(context.Background(), EndpointListPrograms, url.Values{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecutorHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	start := time.Now()
	body, err := e.Do(context.Background(), EndpointListPrograms, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestExecutorConnectFailureExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Nothing is listening anymore

	e := newTestExecutor(srv.URL)
	_, err := e.Do(context.Background(), EndpointListPrograms, url.Values{})

	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 3, connErr.Attempts)
	assert.Equal(t, EndpointListPrograms, connErr.Endpoint)
}

func TestExecutorContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestExecutor(srv.URL)
	_, err := e.Do(ctx, EndpointListPrograms, url.Values{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutorDoJSON(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"name":"Cosmology","programidx":4}]`))
		}))
		defer srv.Close()

		e := newTestExecutor(srv.URL)
		var out []map[string]any
		require.NoError(t, e.DoJSON(context.Background(), EndpointListPrograms, url.Values{}, &out))
		require.Len(t, out, 1)
		assert.Equal(t, "Cosmology", out[0]["name"])
	})

	t.Run("exact 18-digit candid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"candid":627195524515015019,"rb":0.73}]`))
		}))
		defer srv.Close()

		e := newTestExecutor(srv.URL)
		var out []schema.Record
		require.NoError(t, e.DoJSON(context.Background(), EndpointListCandidates, url.Values{}, &out))
		require.Len(t, out, 1)

		assert.Equal(t, "627195524515015019", out[0].ID())
		candid, ok := out[0].Int64("candid")
		require.True(t, ok)
		assert.Equal(t, int64(627195524515015019), candid)
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>login expired</html>`))
		}))
		defer srv.Close()

		e := newTestExecutor(srv.URL)
		var out []map[string]any
		err := e.DoJSON(context.Background(), EndpointListPrograms, url.Values{}, &out)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, EndpointListPrograms, parseErr.Endpoint)
	})
}

func TestExecutorStream(t *testing.T) {
	payload := "spectra tarball bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	e := newTestExecutor(srv.URL)
	var got []byte
	err := e.Stream(context.Background(), EndpointBatchSpec, url.Values{}, func(r io.Reader) error {
		var readErr error
		got, readErr = io.ReadAll(r)
		return readErr
	})
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestExecutorStreamDoesNotRetryAfterBodyConsumed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("partial"))
	}))
	defer srv.Close()

	sentinel := errors.New("downstream write failed")
	e := newTestExecutor(srv.URL)
	err := e.Stream(context.Background(), EndpointBatchSpec, url.Values{}, func(r io.Reader) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, int32(1), calls.Load())
}
