package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type memoryStore struct {
	records map[string]Data
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]Data)}
}

func (m *memoryStore) Save(ctx context.Context, id string, data Data, ttl time.Duration) error {
	m.records[id] = data
	return nil
}

func (m *memoryStore) Load(ctx context.Context, id string) (*Data, error) {
	data, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &data, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func testManager(store Store) *Manager {
	return NewManager(store, Config{
		Secret:     "test_secret",
		TTL:        time.Hour,
		CookieName: "school_session",
	})
}

func TestManagerEstablishAndResolve(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)

	user := &models.User{ID: 42, Role: models.RoleTeacher}
	token, err := mgr.Establish(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Len(t, store.records, 1)

	sess, err := mgr.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, models.RoleTeacher, sess.Role)
	assert.NotEmpty(t, sess.ID)
}

func TestManagerResolveAfterDestroy(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)

	token, err := mgr.Establish(context.Background(), &models.User{ID: 7, Role: models.RoleStudent})
	require.NoError(t, err)

	sess, err := mgr.Resolve(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, mgr.Destroy(context.Background(), sess.ID))

	_, err = mgr.Resolve(context.Background(), token)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErr.Status)
}

func TestManagerResolveTamperedToken(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)

	token, err := mgr.Establish(context.Background(), &models.User{ID: 7, Role: models.RoleStudent})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = mgr.Resolve(context.Background(), tampered)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErr.Status)
}

func TestManagerResolveTokenSignedWithOtherSecret(t *testing.T) {
	store := newMemoryStore()
	other := NewManager(store, Config{Secret: "other_secret", TTL: time.Hour, CookieName: "school_session"})
	token, err := other.Establish(context.Background(), &models.User{ID: 9, Role: models.RoleParent})
	require.NoError(t, err)

	mgr := testManager(store)
	_, err = mgr.Resolve(context.Background(), token)
	require.Error(t, err)
}
