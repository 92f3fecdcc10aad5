package runtime

import (
	"strings"
	"testing"
)

func TestAllocatorSourceComputesBlockCapacity(t *testing.T) {
	src := AllocatorSource([]int{16})
	if !strings.Contains(src, "struct Arena16") {
		t.Fatalf("expected an Arena16 struct, got:\n%s", src)
	}
	// 16384*8 / (16*8+1) = 131072/129 = 1016
	if !strings.Contains(src, "OBJS_PER_BLOCK = 1016") {
		t.Fatalf("expected OBJS_PER_BLOCK = 1016, got:\n%s", src)
	}
	if !strings.Contains(src, "static Arena16 arena16;") {
		t.Fatalf("expected a global arena16 instance, got:\n%s", src)
	}
}

func TestAllocatorSourceCoversAllSizeClasses(t *testing.T) {
	src := AllocatorSource(SizeClasses)
	for _, size := range SizeClasses {
		name := map[int]int{16: 16, 24: 24, 32: 32, 56: 56}[size]
		_ = name
		if !strings.Contains(src, "struct Arena") {
			t.Fatalf("missing allocator struct for size %d", size)
		}
	}
	if strings.Count(src, "struct Arena") != len(SizeClasses) {
		t.Fatalf("expected %d arena structs, got %d", len(SizeClasses), strings.Count(src, "struct Arena"))
	}
}

func TestSourceIncludesBackend(t *testing.T) {
	src := Source()
	if !strings.Contains(src, "struct node {") {
		t.Fatalf("expected backend.cpp's node struct in combined source")
	}
	if !strings.Contains(src, "struct Arena16") {
		t.Fatalf("expected allocator classes ahead of the backend")
	}
	if strings.Index(src, "struct Arena16") > strings.Index(src, "struct node {") {
		t.Fatalf("allocators must come before backend.cpp, which references them")
	}
}
