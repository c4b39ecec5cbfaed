package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homelist/internal/auth"
	"homelist/internal/domain"
	"homelist/internal/repository"
	"homelist/internal/repository/gormdb"
	rediscache "homelist/internal/repository/redis"
	"homelist/internal/storage"
)

type testEnv struct {
	users    UserService
	auth     AuthService
	listings ListingService
	photos   PhotoService
	boot     BootService

	db     *gorm.DB
	tokens repository.TokenRepository
	cache  *rediscache.TokenCache
	redis  *miniredis.Miniredis
	store  *memoryStorage
	issuer *auth.Issuer
	logs   *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := gormdb.Open(gormdb.DriverSQLite, ":memory:", "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormdb.Close(db) })

	userRepo := gormdb.NewUserRepository(db)
	listingRepo := gormdb.NewListingRepository(db)
	tokenRepo := gormdb.NewTokenRepository(db)
	counterRepo := gormdb.NewCounterRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, listingRepo.Init(ctx))
	require.NoError(t, tokenRepo.Init(ctx))
	require.NoError(t, counterRepo.Init(ctx))

	mr := miniredis.RunT(t)
	cache := rediscache.NewTokenCache(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	issuer := auth.NewIssuer("test-secret", 30*time.Minute)
	store := newMemoryStorage()
	users := NewUserService(userRepo)
	photos := NewPhotoService(listingRepo, store, PhotoConfig{Bucket: "photos", KeyPrefix: "listings", MaxSize: 1 << 10})

	return &testEnv{
		users:    users,
		auth:     NewAuthService(users, tokenRepo, cache, issuer, logger),
		listings: NewListingService(listingRepo, photos, logger),
		photos:   photos,
		boot:     NewBootService(counterRepo),
		db:       db,
		tokens:   tokenRepo,
		cache:    cache,
		redis:    mr,
		store:    store,
		issuer:   issuer,
		logs:     hook,
	}
}

// activeJTIs lists the audit rows of tokens that are neither revoked nor expired.
func (e *testEnv) activeJTIs(t *testing.T, userID int64) []string {
	t.Helper()
	var jtis []string
	err := e.db.Table("tokens").
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Order("id").
		Pluck("jti", &jtis).Error
	require.NoError(t, err)
	return jtis
}

// latestToken reads the token tracked as the user's latest, or "".
func (e *testEnv) latestToken(t *testing.T, userID int64) string {
	t.Helper()
	if !e.redis.Exists(fmt.Sprintf("jwt:%d", userID)) {
		return ""
	}
	tok, err := e.redis.Get(fmt.Sprintf("jwt:%d", userID))
	require.NoError(t, err)
	return tok
}

func (e *testEnv) register(t *testing.T, username, password string) *domain.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// memoryStorage is an in-process storage.Service.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, bucket, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func (m *memoryStorage) ListObjects(_ context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		key := strings.TrimPrefix(k, bucket+"/")
		if key == k || !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(v))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStorage) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memoryStorage) DeletePrefix(_ context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://%s.example/%s?expires=%d", bucket, key, int(expires.Seconds())), nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func jpeg(n int) io.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0xff}, n))
}
