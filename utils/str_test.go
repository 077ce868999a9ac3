package utils

import (
	"reflect"
	"testing"
)

func TestStrToInt32s(t *testing.T) {
	got := StrToInt32s("100, 200,x,,300", ",")
	want := []int32{100, 200, 300}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got = StrToInt32s("", ","); len(got) != 0 {
		t.Fatalf("want empty, got %v", got)
	}
}

func TestStrToLowerList(t *testing.T) {
	got := StrToLowerList(" Low,HIGH,, medium ", ",")
	want := []string{"low", "high", "medium"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestS2B(t *testing.T) {
	if b := S2B("wastemap"); string(b) != "wastemap" || len(b) != 8 {
		t.Fatalf("got %q", b)
	}
	if b := S2B(""); len(b) != 0 {
		t.Fatalf("empty: got %q", b)
	}
}
