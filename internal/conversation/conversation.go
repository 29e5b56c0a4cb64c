// Package conversation derives canonical, order-independent conversation keys.
package conversation

import (
	"regexp"
	"strings"
)

// Separator 不会出现在合法 id 中
const Separator = ":"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID 用户 / 目录条目 id 的语法校验
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ID 两个参与者的会话 key，ID(a, b) == ID(b, a)。调用方需先保证 a、b 合法。
func ID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b
}

// Participants 从会话 key 还原两个参与者
func Participants(conversationID string) (string, string, bool) {
	a, b, ok := strings.Cut(conversationID, Separator)
	if !ok || !ValidID(a) || !ValidID(b) {
		return "", "", false
	}
	return a, b, true
}

// Other 返回会话中的另一方
func Other(conversationID, userID string) (string, bool) {
	a, b, ok := Participants(conversationID)
	if !ok {
		return "", false
	}
	switch userID {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}
