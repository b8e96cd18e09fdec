package value

// ---------------------------------------------------------------------------
// Heap: arena for object payloads
// ---------------------------------------------------------------------------

// ObjectKind identifies the payload variant of a heap object.
// Strings are the only object kind at this stage.
type ObjectKind uint8

const (
	ObjString ObjectKind = iota
)

// Handle is a stable reference to a heap object: a slot index plus the
// slot's generation at allocation time. A handle goes stale when its slot
// is released and reused.
type Handle struct {
	index uint32
	gen   uint32
}

type heapObject struct {
	kind ObjectKind
	str  string
	gen  uint32
	live bool
	next int32 // free-list link, meaningful only while !live
}

// Heap owns every object payload created during one interpretation.
// Released slots go on an intrusive free list and bump their generation so
// stale handles are detectable; a future collector will drive Release from
// a mark phase instead of leaving all objects live for the run.
type Heap struct {
	objects  []heapObject
	freeHead int32
	live     int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{freeHead: -1}
}

// AllocString allocates a string object and returns a value referencing it.
func (h *Heap) AllocString(s string) Value {
	var index uint32
	if h.freeHead >= 0 {
		index = uint32(h.freeHead)
		slot := &h.objects[index]
		h.freeHead = slot.next
		slot.kind = ObjString
		slot.str = s
		slot.live = true
	} else {
		index = uint32(len(h.objects))
		h.objects = append(h.objects, heapObject{kind: ObjString, str: s, live: true})
	}
	h.live++
	return Object(Handle{index: index, gen: h.objects[index].gen})
}

// StringValue resolves v to its string payload. The second result is false
// when v is not an object, the handle is stale, or the object is not a
// string.
func (h *Heap) StringValue(v Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	obj, ok := h.get(v.obj)
	if !ok || obj.kind != ObjString {
		return "", false
	}
	return obj.str, true
}

// IsString reports whether v is a live string object in this heap.
func (h *Heap) IsString(v Value) bool {
	_, ok := h.StringValue(v)
	return ok
}

// Release returns an object's slot to the free list and bumps its
// generation, invalidating outstanding handles to it. Nothing calls this
// during normal execution yet; it is the reclamation hook for the future
// collector.
func (h *Heap) Release(v Value) bool {
	if !v.IsObject() {
		return false
	}
	obj, ok := h.get(v.obj)
	if !ok {
		return false
	}
	obj.str = ""
	obj.live = false
	obj.gen++
	obj.next = h.freeHead
	h.freeHead = int32(v.obj.index)
	h.live--
	return true
}

// Len returns the number of live objects.
func (h *Heap) Len() int { return h.live }

func (h *Heap) get(hd Handle) (*heapObject, bool) {
	if int(hd.index) >= len(h.objects) {
		return nil, false
	}
	obj := &h.objects[hd.index]
	if !obj.live || obj.gen != hd.gen {
		return nil, false
	}
	return obj, true
}
