package pushnotification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugaskita/tugasboard/internal/config"
	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/pushsubscription"
	"github.com/tugaskita/tugasboard/internal/pushsubscription/repositoryimpl"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/storage"
)

func TestFromEvent(t *testing.T) {
	added := &eventbus.Event{Type: eventbus.TypeTaskAdded, Task: &task.Task{ID: "1", Title: "Sapu"}}
	p, ok := FromEvent(added)
	require.True(t, ok)
	assert.Equal(t, "Tugas baru", p.Title)
	assert.Equal(t, "Sapu", p.Body)
	assert.Equal(t, LevelInfo, p.Level)

	updated := &eventbus.Event{Type: eventbus.TypeTaskUpdated, Task: &task.Task{ID: "1", Title: "Sapu", Status: task.StatusDone}}
	p, ok = FromEvent(updated)
	require.True(t, ok)
	assert.Equal(t, LevelSuccess, p.Level)
	assert.Equal(t, "Sapu: Selesai", p.Body)

	rejected := &eventbus.Event{Type: eventbus.TypeTaskStatusChanged, Task: &task.Task{ID: "1", Title: "Sapu", Status: task.StatusRejected, Note: "hujan"}}
	p, ok = FromEvent(rejected)
	require.True(t, ok)
	assert.Equal(t, LevelError, p.Level)
	assert.Equal(t, "Sapu: hujan", p.Body)

	_, ok = FromEvent(&eventbus.Event{Type: eventbus.TypeTasksReplaced})
	assert.False(t, ok)
	_, ok = FromEvent(nil)
	assert.False(t, ok)
}

func browserKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}

func TestSender_SendToAll(t *testing.T) {
	ctx := t.Context()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(st)
	for _, path := range []string{"/ok", "/gone"} {
		p256dh, auth := browserKeys(t)
		_, err := pushsubscription.Register(ctx, repo, srv.URL+path, p256dh, auth, "budi")
		require.NoError(t, err)
	}

	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	sender := NewSender(&config.VAPIDEnv{VAPIDPublicKey: pub, VAPIDPrivateKey: priv, VAPIDContact: "mailto:admin@example.com"}, repo)

	delivered := sender.SendToAll(ctx, &NotificationPayload{Title: "Tugas baru", Body: "Sapu", Level: LevelInfo})
	assert.Equal(t, 1, delivered)
	assert.Equal(t, int32(2), hits.Load())

	left, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, srv.URL+"/ok", left[0].Endpoint)
}

func TestSender_Unconfigured(t *testing.T) {
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	sender := NewSender(&config.VAPIDEnv{}, repositoryimpl.NewYAMLRepository(st))
	assert.Zero(t, sender.SendToAll(t.Context(), &NotificationPayload{Title: "x"}))
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*NotificationPayload
}

func (f *fakeNotifier) SendToAll(_ context.Context, p *NotificationPayload) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return 1
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestDispatcher(t *testing.T) {
	bus := eventbus.New()
	n := &fakeNotifier{}
	d := NewDispatcher(bus, n)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Start(ctx)
	}()

	// Wait for the dispatcher's subscription before publishing.
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	bus.PublishNew(eventbus.TypeTasksReplaced, nil)
	bus.PublishNew(eventbus.TypeTaskAdded, &task.Task{ID: "1", Title: "Sapu"})
	bus.PublishNew(eventbus.TypeTaskUpdated, &task.Task{ID: "1", Title: "Sapu", Status: task.StatusRejected})

	require.Eventually(t, func() bool { return n.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, LevelInfo, n.sent[0].Level)
	assert.Equal(t, LevelError, n.sent[1].Level)
}
