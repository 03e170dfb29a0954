package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, fn gin.HandlerFunc) (int, ResponseData) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var rsp ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	return w.Code, rsp
}

func TestHandleErrorMapsCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{errorx.New(errorx.CodeForbidden, "no"), http.StatusForbidden, errorx.CodeForbidden},
		{errorx.New(errorx.CodeInvalidState, "done"), http.StatusConflict, errorx.CodeInvalidState},
		{fmt.Errorf("wrapped: %w", errorx.New(errorx.CodeNotFound, "gone")), http.StatusNotFound, errorx.CodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, errorx.CodeServerBusy},
	}
	for _, tc := range cases {
		status, rsp := run(t, func(c *gin.Context) { HandleError(c, tc.err) })
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, rsp.Code)
		assert.False(t, rsp.Success)
	}
}

func TestHandleSuccessAndCreated(t *testing.T) {
	status, rsp := run(t, func(c *gin.Context) { HandleSuccess(c, gin.H{"id": "1"}) })
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, rsp.Success)
	assert.Equal(t, errorx.CodeSuccess, rsp.Code)

	status, rsp = run(t, func(c *gin.Context) { HandleCreated(c, nil) })
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, rsp.Success)
	assert.Nil(t, rsp.Data)
}
