package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/refabry-storefront/pkg/db"
	pkgmigrate "github.com/angelmondragon/refabry-storefront/pkg/migrate"
	pkgredis "github.com/angelmondragon/refabry-storefront/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type fakeRedisStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	pingErr error
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (f *fakeRedisStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedisStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeRedisStore) CartSlotKey(sessionID string) string { return "sf:cart:" + sessionID }

func TestRedisSlotReadWrite(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedisStore()
	backend := NewRedis(store, time.Hour)
	slot := Bind(backend, "abc")

	_, err := slot.Read(ctx)
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[]`)))
	assert.Equal(t, `[]`, store.values["sf:cart:abc"])
	assert.Equal(t, time.Hour, store.ttls["sf:cart:abc"])

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}

func TestRedisSlotSurfacesBackendErrors(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedisStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	slot := Bind(NewRedis(store, 0), "abc")

	_, err := slot.Read(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmpty)
	require.Error(t, slot.Write(ctx, []byte(`[]`)))
}

func TestMemorySlotCopiesPayload(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	slot := Bind(mem, "s1")

	payload := []byte(`[{"id":1}]`)
	require.NoError(t, slot.Write(ctx, payload))
	payload[0] = 'x'

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	_, err = Bind(mem, "other").Read(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestUnavailableSlot(t *testing.T) {
	ctx := context.Background()
	slot := Bind(nil, "s1")

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, slot.Write(ctx, []byte(`[]`)), ErrUnavailable)
}

func TestSQLSlotUpsert(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(sqlite.Open("file:slots_sql_test?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, pkgmigrate.Run(ctx, sqlDB, "sqlite", "up"))

	backend := NewSQL(conn)
	require.NoError(t, backend.Ping(ctx))
	slot := Bind(backend, "session-1")

	_, err = slot.Read(ctx)
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[{"id":1,"quantity":1}]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":1,"quantity":4}]`)))

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"quantity":4}]`, string(got))

	var count int64
	require.NoError(t, conn.Model(&CartSlot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
