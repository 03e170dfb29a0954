package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	alnumCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// 邀请码去掉易混淆字符 0/O/1/I/L
	inviteCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// GetNowAndLenRandomString 生成带日期前缀的随机字符串（用于业务 UUID）
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE1234567
func GetNowAndLenRandomString(length int) string {
	return time.Now().Format("060102") + randomFrom(alnumCharset, length)
}

// GetInviteCode 生成群邀请码
func GetInviteCode(length int) string {
	return randomFrom(inviteCharset, length)
}

func randomFrom(charset string, length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = charset[0]
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}
