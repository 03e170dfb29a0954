package random

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetNowAndLenRandomString(t *testing.T) {
	s := GetNowAndLenRandomString(11)
	assert.Len(t, s, 17)
	assert.True(t, strings.HasPrefix(s, time.Now().Format("060102")))
}

func TestGetInviteCodeUsesUnambiguousCharset(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code := GetInviteCode(12)
		assert.Len(t, code, 12)
		assert.False(t, strings.ContainsAny(code, "0O1IL"), code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}
