// Package runtime provides the C++ text the emitter concatenates ahead of
// every translated program: a set of arena allocators, one per object size
// class, followed by the hand-written object model and builtin dispatch
// code in backend.cpp.
//
// The allocator shape mirrors the teacher's bytecode VM only in spirit
// (fixed-capacity, pre-sized storage rather than growable slices); its
// actual algorithm — 16 KiB blocks, a liveness bitmap per block, bit-scan
// allocation — has no analogue anywhere in the pack and is written
// directly from the data model's allocator description.
package runtime

import (
	"fmt"
	_ "embed"
)

//go:embed backend.cpp
var backendSource string

// blockBytes is the fixed block size every arena carves its chunks into;
// 14 low bits of an object's address therefore always select an offset
// within its owning block.
const blockBytes = 16384

// chunkBytes is how much memory is requested from the OS at a time, each
// chunk subdivided into aligned blockBytes blocks.
const chunkBytes = 2 * 1024 * 1024

// arenaClass names the C++ type handed to a given object size class, used
// only for the doc comment on the generated class — the size classes
// themselves are named by byte size (Arena16, Arena24, ...) since more
// than one object shape can share a class (node and a future small-object
// kind might both fit in 16 bytes).
var arenaClass = map[int]string{
	16: "node",
	24: "tuple",
	32: "dict",
	56: "context",
}

// AllocatorSource generates one arena-allocator class per size in sizes,
// each sized to pack as many objSize-byte slots as fit in a 16 KiB block
// alongside a liveness bitmap covering them, per the allocator glue in the
// data model: alloc_obj finds a free slot via bit-scan-forward on the
// inverted liveness word, mark_dead clears a block's bitmap, and
// mark_live recovers a slot's owning block from its address's low 14
// bits.
func AllocatorSource(sizes []int) string {
	out := ""
	for _, size := range sizes {
		out += allocatorClass(size)
	}
	return out
}

func allocatorClass(objSize int) string {
	objsPerBlock := (blockBytes * 8) / (objSize*8 + 1)
	bitmapWords := (objsPerBlock + 63) / 64
	rem := objsPerBlock % 64

	guard := ""
	if rem != 0 {
		guard = fmt.Sprintf("~((uint64_t(1) << %d) - 1)", rem)
	} else {
		guard = "uint64_t(0)"
	}

	what := arenaClass[objSize]
	if what == "" {
		what = "object"
	}

	return fmt.Sprintf(`
// Arena%d holds %d-byte %s cells: %d per 16 KiB block, tracked by a
// %d-word liveness bitmap with the tail beyond objsPerBlock pre-marked
// live so bit-scan never selects past the end of a block's slot array.
struct Arena%d {
    static const size_t OBJ_SIZE = %d;
    static const size_t BLOCK_BYTES = %d;
    static const size_t OBJS_PER_BLOCK = %d;
    static const size_t BITMAP_WORDS = %d;

    struct Block {
        unsigned char data[BLOCK_BYTES];
        uint64_t live[BITMAP_WORDS];
        Block* next;
    };

    Block* head;

    Arena%d() : head(nullptr) { new_chunk(); }

    static uint64_t tail_guard() { return %s; }

    void reset_bitmap(Block* b) {
        std::memset(b->live, 0, sizeof(b->live));
        b->live[BITMAP_WORDS - 1] = tail_guard();
    }

    void new_chunk() {
        void* mem = nullptr;
        if (posix_memalign(&mem, BLOCK_BYTES, %d) != 0) {
            error("pythonc: out of memory allocating %s arena");
        }
        size_t nblocks = %d / BLOCK_BYTES;
        for (size_t i = 0; i < nblocks; i++) {
            Block* b = reinterpret_cast<Block*>(reinterpret_cast<unsigned char*>(mem) + i * BLOCK_BYTES);
            reset_bitmap(b);
            b->next = head;
            head = b;
        }
    }

    void* alloc_obj() {
        for (Block* b = head; b; b = b->next) {
            for (size_t w = 0; w < BITMAP_WORDS; w++) {
                uint64_t inv = ~b->live[w];
                if (inv != 0) {
                    unsigned long bit;
                    __asm__("bsfq %%1, %%0" : "=r"(bit) : "r"(inv));
                    b->live[w] |= (uint64_t(1) << bit);
                    size_t slot = w * 64 + bit;
                    return b->data + slot * OBJ_SIZE;
                }
            }
        }
        new_chunk();
        return alloc_obj();
    }

    void mark_dead(void* obj) {
        uintptr_t addr = reinterpret_cast<uintptr_t>(obj);
        Block* b = reinterpret_cast<Block*>(addr & ~(uintptr_t)(BLOCK_BYTES - 1));
        reset_bitmap(b);
    }

    bool mark_live(void* obj) {
        uintptr_t addr = reinterpret_cast<uintptr_t>(obj);
        Block* b = reinterpret_cast<Block*>(addr & ~(uintptr_t)(BLOCK_BYTES - 1));
        size_t slot = (addr - reinterpret_cast<uintptr_t>(b->data)) / OBJ_SIZE;
        size_t w = slot / 64, bit = slot %% 64;
        bool was_live = (b->live[w] >> bit) & 1;
        b->live[w] |= (uint64_t(1) << bit);
        return was_live;
    }
};

static Arena%d arena%d;
`, objSize, objSize, what, objsPerBlock, bitmapWords,
		objSize, objSize, blockBytes, objsPerBlock, bitmapWords,
		objSize, guard,
		chunkBytes, what,
		chunkBytes,
		objSize, objSize)
}

// SizeClasses is the translator's fixed set of arena object sizes, per the
// data model: node (16), tuple (24), dict (32), context (56).
var SizeClasses = []int{16, 24, 32, 56}

// errorDecl forward-declares backend.cpp's error() so the arena classes,
// emitted ahead of it in the same translation unit, can call it from
// new_chunk() when posix_memalign fails.
const errorDecl = "__attribute__((noreturn)) static void error(const char* fmt, ...);\n\n"

// Source returns the full runtime text the emitter inlines ahead of
// translated program code: the errorDecl forward declaration, the arena
// allocators for SizeClasses, then the hand-written object model and
// builtin dispatch.
func Source() string {
	return errorDecl + AllocatorSource(SizeClasses) + "\n" + backendSource
}
