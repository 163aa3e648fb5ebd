package updater

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navigraph/navdata-interface/internal/httpc"
)

type fakeClient struct {
	resp *httpc.Response
	err  error
}

func (f fakeClient) Get(ctx context.Context, url string) (*httpc.Response, error) {
	return f.resp, f.err
}

func (f fakeClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpc.Response, error) {
	return f.resp, f.err
}

func TestLatestCycleOK(t *testing.T) {
	client := fakeClient{resp: &httpc.Response{StatusCode: 200, Body: []byte(`{"cycle":"2501"}`)}}
	cycle, err := LatestCycle(context.Background(), client, "https://vendor.example/info")
	require.NoError(t, err)
	assert.Equal(t, "2501", cycle)
}

func TestLatestCycleNetworkError(t *testing.T) {
	client := fakeClient{err: errors.New("unreachable")}
	_, err := LatestCycle(context.Background(), client, "https://vendor.example/info")
	require.Error(t, err)
}

func TestLatestCycleBadStatus(t *testing.T) {
	client := fakeClient{resp: &httpc.Response{StatusCode: 503}}
	_, err := LatestCycle(context.Background(), client, "https://vendor.example/info")
	require.Error(t, err)
}

func TestLatestCycleMissingField(t *testing.T) {
	client := fakeClient{resp: &httpc.Response{StatusCode: 200, Body: []byte(`{}`)}}
	_, err := LatestCycle(context.Background(), client, "https://vendor.example/info")
	require.Error(t, err)
}
