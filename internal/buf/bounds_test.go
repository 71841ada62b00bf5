package buf

import (
	"testing"
)

const maxUintptr = ^uintptr(0)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(maxUintptr, 1); ok {
		t.Fatalf("expected overflow when adding to max uintptr")
	}
	if sum, ok := AddOverflowSafe(maxUintptr-1, 1); !ok || sum != maxUintptr {
		t.Fatalf("AddOverflowSafe(max-1,1)=%d,%v want max,true", sum, ok)
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(16, 32); !ok || p != 512 {
		t.Fatalf("MulOverflowSafe(16,32)=%d,%v want 512,true", p, ok)
	}
	if p, ok := MulOverflowSafe(0, maxUintptr); !ok || p != 0 {
		t.Fatalf("MulOverflowSafe(0,max)=%d,%v want 0,true", p, ok)
	}
	if _, ok := MulOverflowSafe(maxUintptr/2+1, 2); ok {
		t.Fatalf("expected overflow for (max/2+1)*2")
	}
}

func TestCheckRange(t *testing.T) {
	end, err := CheckRange(64, 16, 48)
	if err != nil || end != 64 {
		t.Fatalf("CheckRange(64,16,48)=%d,%v want 64,nil", end, err)
	}
	if _, err := CheckRange(64, 16, 49); err == nil {
		t.Fatalf("expected bounds error")
	}
	if _, err := CheckRange(64, maxUintptr, 2); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, 6, 0); ok {
		t.Fatalf("Slice should reject offset past the end")
	}
	if got, ok := Slice(data, 5, 0); !ok || len(got) != 0 {
		t.Fatalf("Slice at end with zero length should succeed")
	}
}
