package api

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mediremind-backend/config"
	"mediremind-backend/internal/auth"
	"mediremind-backend/internal/model"
	"mediremind-backend/internal/store"
)

type testEnv struct {
	router *gin.Engine
	store  store.Store
	tokens *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Medication{}, &model.Reminder{}, &model.PushSubscription{},
	))

	s := store.NewGormStore(db)
	tokens := auth.NewManager("test-secret", time.Hour)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Stream.Interval = 20 * time.Millisecond

	webpushOptions := &webpush.Options{VAPIDPublicKey: "test_public", VAPIDPrivateKey: "test_private"}
	router := NewRouter(context.Background(), s, webpushOptions, tokens, cfg)

	return &testEnv{router: router, store: s, tokens: tokens}
}

func (e *testEnv) createUser(t *testing.T, email string) (model.User, string) {
	user := model.User{Email: email}
	require.NoError(t, e.store.DB().Create(&user).Error)
	token, err := e.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}
