package utils

import (
	"strconv"
	"strings"
	"unsafe"
)

// 解析以sep分隔的整数列表，忽略无效项
func StrToInts(s, sep string) []int {
	var (
		ids  = strings.Split(s, sep)
		rets = make([]int, 0, len(ids))
		i    int
		e    error
	)
	for _, id := range ids {
		i, e = strconv.Atoi(strings.TrimSpace(id))
		if e == nil {
			rets = append(rets, i)
		}
	}
	return rets
}

// 解析搜索值列表，如"100,200"
func StrToInt32s(s, sep string) []int32 {
	ints := StrToInts(s, sep)
	rets := make([]int32, len(ints))
	for i, v := range ints {
		rets[i] = int32(v)
	}
	return rets
}

func StrToLowerList(s, sep string) (rets []string) {
	for _, v := range strings.Split(s, sep) {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			rets = append(rets, v)
		}
	}
	return
}

// 零拷贝转换，返回的切片只读
func S2B(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
