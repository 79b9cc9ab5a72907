package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// 实体前缀
const (
	PrefixSemester   = "sem"
	PrefixCourse     = "course"
	PrefixAttendance = "att"
)

// New 生成不透明的唯一标识；prefix 非空时以 "prefix_" 开头
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Kind 返回标识中的实体前缀，无前缀时返回空串
func Kind(id string) string {
	i := strings.IndexByte(id, '_')
	if i <= 0 {
		return ""
	}
	return id[:i]
}
