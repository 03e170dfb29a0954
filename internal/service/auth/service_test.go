package auth

import (
	"context"
	"testing"
	"time"

	"chat_server/internal/model"
	"chat_server/internal/testutil"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *testutil.FakeCache) {
	t.Helper()
	jwt.Init("auth-service-test", 60, 24)
	repos := testutil.NewRepositories(t)
	require.NoError(t, repos.User.Create(context.Background(), &model.UserInfo{
		Uuid: "U_A", Email: "a@example.com", RawPassword: "secret123",
	}))
	cache := testutil.NewFakeCache()
	return NewAuthService(repos, cache), cache
}

// login 模拟登录：签发 refresh token 并记录 tokenID
func login(t *testing.T, cache *testutil.FakeCache, userID string) string {
	t.Helper()
	token, tokenID, err := jwt.GenerateRefreshToken(userID)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), constants.CACHE_KEY_USER_TOKEN+userID, tokenID, time.Hour))
	return token
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, cache := newService(t)
	ctx := context.Background()
	old := login(t, cache, "U_A")

	rsp, err := svc.Refresh(ctx, old)
	require.NoError(t, err)
	assert.NotEmpty(t, rsp.Token)

	claims, err := jwt.ParseAccessToken(rsp.Token)
	require.NoError(t, err)
	assert.Equal(t, "U_A", claims.UserID)

	// 旧 refresh token 已被替换
	_, err = svc.Refresh(ctx, old)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	_, err = svc.Refresh(ctx, rsp.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsInvalidTokens(t *testing.T) {
	svc, cache := newService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-token")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	access, err := jwt.GenerateAccessToken("U_A")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, access)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	ghost := login(t, cache, "U_GHOST")
	_, err = svc.Refresh(ctx, ghost)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	svc, cache := newService(t)
	ctx := context.Background()
	token := login(t, cache, "U_A")

	require.NoError(t, svc.Logout(ctx, "U_A"))
	ok, err := svc.ValidateTokenID(ctx, "U_A", "anything")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Refresh(ctx, token)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
