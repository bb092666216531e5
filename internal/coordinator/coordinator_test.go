package coordinator

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportFunc func(ctx context.Context, ch Channel, params url.Values) ([]byte, error)

func (f transportFunc) Send(ctx context.Context, ch Channel, params url.Values) ([]byte, error) {
	return f(ctx, ch, params)
}

// serial runs completions one at a time on the caller's goroutine.
type serial struct{ mu sync.Mutex }

func (s *serial) post(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	return true
}

func newTestCoordinator(tr Transport) *Coordinator {
	return New(tr, (&serial{}).post, nil)
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	require.Eventually(t, func() bool { return c.InFlight() == 0 }, time.Second, time.Millisecond)
}

type outcome struct {
	body      string
	domain    *DomainError
	transport error
}

func record(out chan<- outcome) Handlers {
	return Handlers{
		OnSuccess:        func(b []byte) { out <- outcome{body: string(b)} },
		OnDomainError:    func(err *DomainError) { out <- outcome{domain: err} },
		OnTransportError: func(err error) { out <- outcome{transport: err} },
	}
}

func TestIssue_Classification(t *testing.T) {
	tests := []struct {
		name       string
		channel    Channel
		body       string
		wantBody   string
		wantDomain string
	}{
		{"timeframes data", ChannelTimeframes, `[{"Date":"01-01-2030"}]`, `[{"Date":"01-01-2030"}]`, ""},
		{"timeframes not allowed", ChannelTimeframes, "not_allowed", "", "not_allowed"},
		{"timeframes invalid data", ChannelTimeframes, "invalid_data", "", "invalid_data"},
		{"timeframes error", ChannelTimeframes, "error", "", "error"},
		{"timeframes no_result is not a sentinel", ChannelTimeframes, "no_result", "no_result", ""},
		{"locations no result", ChannelLocations, "no_result", "", "no_result"},
		{"map locations no result", ChannelMapLocations, "no_result", "", "no_result"},
		{"area error with whitespace", ChannelLocationsInArea, " error\n", "", "error"},
		{"save option ok", ChannelSaveOption, "OK", "OK", ""},
		{"save cost failure", ChannelSaveCost, "FAIL", "", "FAIL"},
		{"save phone empty", ChannelSavePhone, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
				return []byte(tt.body), nil
			}))
			out := make(chan outcome, 1)

			_, err := c.Issue(context.Background(), tt.channel, nil, record(out))
			require.NoError(t, err)

			got := <-out
			if tt.channel.IsPersistence() && tt.wantBody == "" {
				require.NotNil(t, got.domain)
				assert.Equal(t, tt.body, got.domain.Sentinel)
				return
			}
			if tt.wantDomain != "" {
				require.NotNil(t, got.domain)
				assert.Equal(t, tt.wantDomain, got.domain.Sentinel)
				assert.Equal(t, tt.channel, got.domain.Channel)
				return
			}
			assert.Nil(t, got.domain)
			assert.Equal(t, tt.wantBody, got.body)
		})
	}
}

func TestIssue_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		return nil, boom
	}))
	out := make(chan outcome, 1)

	_, err := c.Issue(context.Background(), ChannelLocations, nil, record(out))
	require.NoError(t, err)

	got := <-out
	assert.ErrorIs(t, got.transport, boom)
	assert.False(t, c.Pending(ChannelLocations))
}

func TestIssue_CancelAndReplace(t *testing.T) {
	release := make(chan struct{})
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		if p.Get("q") == "first" {
			<-release
			// Ignore cancellation on purpose: the late body must still be dropped.
			return []byte("first"), nil
		}
		return []byte("second"), nil
	}))
	out := make(chan outcome, 2)

	firstID, err := c.Issue(context.Background(), ChannelTimeframes, url.Values{"q": {"first"}}, record(out))
	require.NoError(t, err)
	secondID, err := c.Issue(context.Background(), ChannelTimeframes, url.Values{"q": {"second"}}, record(out))
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	got := <-out
	assert.Equal(t, "second", got.body)

	close(release)
	waitIdle(t, c)

	select {
	case late := <-out:
		t.Fatalf("superseded request delivered %+v", late)
	default:
	}
}

func TestIssue_SupersededContextIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		if p.Get("q") == "first" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return []byte("[]"), nil
	}))
	out := make(chan outcome, 2)

	_, err := c.Issue(context.Background(), ChannelLocationsInArea, url.Values{"q": {"first"}}, record(out))
	require.NoError(t, err)
	_, err = c.Issue(context.Background(), ChannelLocationsInArea, url.Values{"q": {"second"}}, record(out))
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded request context was not cancelled")
	}
	waitIdle(t, c)

	require.Len(t, out, 1)
	assert.Equal(t, "[]", (<-out).body)
}

func TestCancel_SuppressesHandlers(t *testing.T) {
	release := make(chan struct{})
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		<-release
		return []byte("OK"), nil
	}))
	out := make(chan outcome, 1)

	_, err := c.Issue(context.Background(), ChannelSaveOption, nil, record(out))
	require.NoError(t, err)
	assert.True(t, c.Pending(ChannelSaveOption))

	c.Cancel(ChannelSaveOption)
	assert.False(t, c.Pending(ChannelSaveOption))

	close(release)
	waitIdle(t, c)
	assert.Empty(t, out)
}

func TestIssue_ChannelsAreIndependent(t *testing.T) {
	release := make(chan struct{})
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		<-release
		return []byte(ch), nil
	}))
	out := make(chan outcome, 2)

	_, err := c.Issue(context.Background(), ChannelTimeframes, nil, record(out))
	require.NoError(t, err)
	_, err = c.Issue(context.Background(), ChannelMapLocations, nil, record(out))
	require.NoError(t, err)

	close(release)
	waitIdle(t, c)

	require.Len(t, out, 2)
	bodies := []string{(<-out).body, (<-out).body}
	assert.ElementsMatch(t, []string{string(ChannelTimeframes), string(ChannelMapLocations)}, bodies)
}

func TestIssue_UnknownChannel(t *testing.T) {
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		return nil, nil
	}))
	_, err := c.Issue(context.Background(), Channel("bogus"), nil, Handlers{})
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestIssue_ParamsAreCopied(t *testing.T) {
	seen := make(chan string, 1)
	c := newTestCoordinator(transportFunc(func(ctx context.Context, ch Channel, p url.Values) ([]byte, error) {
		seen <- p.Get("costs")
		return []byte("OK"), nil
	}))

	params := url.Values{"costs": {"2.5"}}
	_, err := c.Issue(context.Background(), ChannelSaveCost, params, Handlers{})
	require.NoError(t, err)
	params.Set("costs", "9")

	assert.Equal(t, "2.5", <-seen)
	waitIdle(t, c)
}
