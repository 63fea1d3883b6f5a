package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, BackoffFactor: 2}
}

type fakeAPI struct {
	flaky  atomic.Int32
	pages  atomic.Int32
	badKey atomic.Bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/committees/superpacs.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api-key") != "secret" {
			f.badKey.Store(true)
		}
		f.pages.Add(1)
		switch r.URL.Query().Get("offset") {
		case "0":
			_, _ = w.Write([]byte(`{"results":[
				{"id":"C1","name":"AMERICANS FOR PROSPERITY, THE","relative_uri":"/committees/C1.json"},
				{"id":"C2","name":"AMERICANS FOR LIBERTY","total_receipts":50,"relative_uri":"/committees/C2.json"}
			]}`))
		case "2":
			_, _ = w.Write([]byte(`{"results":[
				{"id":"C3","name":"PEOPLE FOR AMERICANS","relative_uri":"/committees/C3.json"},
				{"id":"C4","name":"NO DETAIL PAC","total_receipts":4}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	})
	mux.HandleFunc("/committees/C1.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"C1","name":"AMERICANS FOR PROSPERITY, THE","total_receipts":100,"city":"ARLINGTON"}]}`))
	})
	mux.HandleFunc("/committees/C2.json", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/committees/C3.json", func(w http.ResponseWriter, r *http.Request) {
		if f.flaky.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":"C3","name":"PEOPLE FOR AMERICANS","total_receipts":10}]}`))
	})
	return mux
}

func TestFetchAllPagesAndDetails(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	c := New(Options{
		Endpoint:    srv.URL,
		Method:      "/committees/superpacs.json",
		APIKey:      "secret",
		PageSize:    2,
		Concurrency: 3,
		Timeout:     2 * time.Second,
		Retry:       fastPolicy(5),
	}, nil)

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.False(t, api.badKey.Load())
	require.EqualValues(t, 3, api.pages.Load())

	names := make([]string, 0, len(got))
	for _, e := range got {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{
		"AMERICANS FOR PROSPERITY, THE",
		"AMERICANS FOR LIBERTY",
		"PEOPLE FOR AMERICANS",
		"NO DETAIL PAC",
	}, names)

	require.Equal(t, "100", got[0].Receipts().String())
	require.Contains(t, string(got[0].Raw), "ARLINGTON")
	// 404 detail keeps the summary record
	require.Equal(t, "50", got[1].Receipts().String())
	require.Contains(t, string(got[1].Raw), "relative_uri")
	// recovered after two 503s
	require.Equal(t, "10", got[2].Receipts().String())
	require.EqualValues(t, 3, api.flaky.Load())
	require.Equal(t, "4", got[3].Receipts().String())
}

func TestFetchAllExhaustsRetries(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	c := New(Options{Endpoint: srv.URL, Method: "/committees/superpacs.json", Retry: fastPolicy(3)}, nil)
	_, err := c.FetchAll(context.Background())
	require.ErrorIs(t, err, ErrExhausted)
	require.ErrorIs(t, err, errBadJSON)
	require.EqualValues(t, 3, hits.Load())
}

func TestFetchAllPermanentStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{Endpoint: srv.URL, Method: "/committees/superpacs.json", Retry: fastPolicy(5)}, nil)
	_, err := c.FetchAll(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	require.False(t, errors.Is(err, ErrExhausted))
	require.EqualValues(t, 1, hits.Load())
}

func TestRetryPolicyBackoff(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{MaxAttempts: 4, BaseDelay: 10 * time.Millisecond, BackoffFactor: 3}
	b := p.backoff()
	var delays []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			break
		}
		delays = append(delays, d)
	}
	require.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 90 * time.Millisecond}, delays)
}

func TestRetryPolicyDo(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	err := fastPolicy(3).Do(context.Background(), func(attempt int, err error) {
		retried = append(retried, attempt)
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return transient(errors.New("boom"))
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []int{1, 2}, retried)

	permanent := errors.New("permanent")
	err = fastPolicy(3).Do(context.Background(), nil, func(context.Context) error { return permanent })
	require.ErrorIs(t, err, permanent)
	require.False(t, errors.Is(err, ErrExhausted))
}

func TestRetryPolicyHonoursCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, BackoffFactor: 2}
	err := p.Do(ctx, func(int, error) { cancel() }, func(context.Context) error {
		return transient(errors.New("slow"))
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, errors.Is(err, ErrExhausted))
}
