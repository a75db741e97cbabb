package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/pkg/errcode"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/pkg/response"
)

const apiPrefix = "/api/v1"

// Remote is an Adapter talking to a notetool store server. Writes are plain
// HTTP calls; subscriptions are websocket streams that are redialed with
// exponential backoff whenever they drop. Each connection starts with a full
// snapshot, so a reconnect never loses state.
type Remote struct {
	base       *url.URL
	client     *http.Client
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
}

type RemoteOption func(*Remote)

func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = client
	}
}

func WithBackoff(min, max time.Duration) RemoteOption {
	return func(r *Remote) {
		r.minBackoff = min
		r.maxBackoff = max
	}
}

func NewRemote(server string, opts ...RemoteOption) (*Remote, error) {
	base, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(server), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https: %s", server)
	}
	if !strings.HasSuffix(base.Path, apiPrefix) {
		base.Path += apiPrefix
	}
	r := &Remote{
		base:       base,
		client:     &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Remote) SubscribeList(ctx context.Context, namespace string, fn ListFunc) (Subscription, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("list callback is required: %w", appErr.ErrInvalid)
	}
	target := r.wsEndpoint("ns", EncodeNamespace(namespace), "watch", "entries")
	return r.stream(ctx, target, func(data []byte) error {
		var msg ListMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decode list message: %w", err)
		}
		if msg.Entries == nil {
			msg.Entries = []Entry{}
		}
		fn(msg.Entries)
		return nil
	}), nil
}

func (r *Remote) SubscribeScalar(ctx context.Context, namespace, key string, fn ScalarFunc) (Subscription, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("scalar callback is required: %w", appErr.ErrInvalid)
	}
	target := r.wsEndpoint("ns", EncodeNamespace(namespace), "watch", "scalars", key)
	return r.stream(ctx, target, func(data []byte) error {
		var msg ScalarMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decode scalar message: %w", err)
		}
		if string(msg.Value) == "null" {
			msg.Value = nil
		}
		fn(msg.Value)
		return nil
	}), nil
}

func (r *Remote) Create(ctx context.Context, namespace string, fields Fields) (string, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", err
	}
	var result CreateResult
	if err := r.call(ctx, http.MethodPost, r.endpoint("ns", EncodeNamespace(namespace), "entries"), fields, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

func (r *Remote) Update(ctx context.Context, namespace, key string, fields Fields) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return r.call(ctx, http.MethodPut, r.endpoint("ns", EncodeNamespace(namespace), "entries", key), fields, nil)
}

func (r *Remote) Delete(ctx context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return r.call(ctx, http.MethodDelete, r.endpoint("ns", EncodeNamespace(namespace), "entries", key), nil, nil)
}

func (r *Remote) SetScalar(ctx context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return r.call(ctx, http.MethodPut, r.endpoint("ns", EncodeNamespace(namespace), "scalars", key), ScalarRequest{Value: value}, nil)
}

func (r *Remote) endpoint(parts ...string) string {
	u := *r.base
	escaped := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	u.RawPath = u.Path + "/" + strings.Join(escaped, "/")
	u.Path = u.Path + "/" + strings.Join(parts, "/")
	return u.String()
}

func (r *Remote) wsEndpoint(parts ...string) string {
	target := r.endpoint(parts...)
	if strings.HasPrefix(target, "https://") {
		return "wss://" + strings.TrimPrefix(target, "https://")
	}
	return "ws://" + strings.TrimPrefix(target, "http://")
}

func (r *Remote) call(ctx context.Context, method, target string, body interface{}, out interface{}) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var env response.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Code != 0 {
		return codeError(env.Code, env.Msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func codeError(code int, msg string) error {
	var sentinel error
	switch code {
	case errcode.ErrNotFound:
		sentinel = appErr.ErrNotFound
	case errcode.ErrInvalid:
		sentinel = appErr.ErrInvalid
	case errcode.ErrTooMany:
		sentinel = appErr.ErrTooMany
	case errcode.ErrUnauthenticated:
		sentinel = appErr.ErrUnauthenticated
	case errcode.ErrConflict:
		sentinel = appErr.ErrConflict
	default:
		sentinel = appErr.ErrInternal
	}
	return fmt.Errorf("%s: %w", msg, sentinel)
}

type remoteSubscription struct {
	cancel context.CancelFunc
	closed atomic.Bool
	done   chan struct{}
}

func (s *remoteSubscription) Unsubscribe() {
	s.closed.Store(true)
	s.cancel()
}

func (r *Remote) stream(ctx context.Context, target string, handle func([]byte) error) Subscription {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	sub := &remoteSubscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		retry := newBackoff(r.minBackoff, r.maxBackoff)
		logger := logutil.GetLogger(runCtx).With(zap.String("host", r.base.Host))
		for {
			err := r.streamOnce(runCtx, target, retry.Reset, func(data []byte) error {
				if sub.closed.Load() {
					return nil
				}
				return handle(data)
			})
			if runCtx.Err() != nil {
				return
			}
			wait := retry.Next()
			logger.Warn("stream dropped, resubscribing", zap.Error(err), zap.Duration("retry_in", wait))
			timer := time.NewTimer(wait)
			select {
			case <-runCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return sub
}

func (r *Remote) streamOnce(ctx context.Context, target string, connected func(), handle func([]byte) error) error {
	conn, _, err := r.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := handle(data); err != nil {
			return err
		}
		// only a delivered message counts as a healthy connection
		if connected != nil {
			connected()
			connected = nil
		}
	}
}
