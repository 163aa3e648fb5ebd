package diagnostics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navigraph/navdata-interface/internal/httpc"
)

type fakeHTTPClient struct {
	fail        map[string]bool
	hits        []string
	postBodies  map[string][]byte
	postHeaders map[string]map[string]string
}

func (f *fakeHTTPClient) Get(ctx context.Context, url string) (*httpc.Response, error) {
	f.hits = append(f.hits, url)
	if f.fail[url] {
		return nil, errors.New("network unreachable")
	}
	return &httpc.Response{StatusCode: 200}, nil
}

func (f *fakeHTTPClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpc.Response, error) {
	f.hits = append(f.hits, url)
	if f.fail[url] {
		return nil, errors.New("network unreachable")
	}
	if f.postBodies == nil {
		f.postBodies = map[string][]byte{}
		f.postHeaders = map[string]map[string]string{}
	}
	f.postBodies[url] = body
	f.postHeaders[url] = headers
	return &httpc.Response{StatusCode: 200}, nil
}

func TestLoadCreatesStableUserID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_sentry.json")

	sink, err := Load(path, &fakeHTTPClient{})
	require.NoError(t, err)
	id1 := sink.UserID()
	require.NotEmpty(t, id1)

	reloaded, err := Load(path, &fakeHTTPClient{})
	require.NoError(t, err)
	assert.Equal(t, id1, reloaded.UserID())
}

func TestSendEventEnqueuesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_sentry.json")
	sink, err := Load(path, &fakeHTTPClient{})
	require.NoError(t, err)

	sink.Configure(sentry.ClientOptions{Dsn: "https://public@o0.ingest.sentry.io/1"})
	sink.SendEvent(&sentry.Event{Message: "boom"})

	assert.Equal(t, 1, sink.PendingCount())

	reloaded, err := Load(path, &fakeHTTPClient{})
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.PendingCount())
}

func TestDrainEvictsSuccessfulReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_sentry.json")
	client := &fakeHTTPClient{fail: map[string]bool{"https://fails.example/": true}}
	sink, err := Load(path, client)
	require.NoError(t, err)

	require.NoError(t, sink.Enqueue(PendingReport{URL: "https://ok.example/", Body: "{}"}))
	require.NoError(t, sink.Enqueue(PendingReport{URL: "https://fails.example/", Body: "{}"}))

	require.NoError(t, sink.Drain(context.Background()))
	assert.Equal(t, 1, sink.PendingCount())
}

func TestDrainResendsBodyAndAuthHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_sentry.json")
	client := &fakeHTTPClient{}
	sink, err := Load(path, client)
	require.NoError(t, err)

	require.NoError(t, sink.Enqueue(PendingReport{
		ID:         "abc123",
		URL:        "https://ok.example/api/1/store/",
		AuthHeader: "Sentry sentry_version=7, sentry_key=public",
		Body:       `{"message":"boom"}`,
	}))

	require.NoError(t, sink.Drain(context.Background()))
	assert.Equal(t, []byte(`{"message":"boom"}`), client.postBodies["https://ok.example/api/1/store/"])
	assert.Equal(t, "Sentry sentry_version=7, sentry_key=public", client.postHeaders["https://ok.example/api/1/store/"]["X-Sentry-Auth"])
}

func TestSendEventCapturesAuthHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_sentry.json")
	sink, err := Load(path, &fakeHTTPClient{})
	require.NoError(t, err)

	sink.Configure(sentry.ClientOptions{Dsn: "https://public@o0.ingest.sentry.io/1"})
	sink.SendEvent(&sentry.Event{Message: "boom"})

	require.Equal(t, 1, len(sink.state.Reports))
	assert.NotEmpty(t, sink.state.Reports[0].AuthHeader)
	assert.Contains(t, sink.state.Reports[0].AuthHeader, "sentry_key=public")
}
