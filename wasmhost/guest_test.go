package wasmhost

// A minimal core module that imports the bridge functions and re-exports
// them as guest functions, with a bump allocator over one page of memory.

const (
	valI32 = 0x7f
	valI64 = 0x7e

	opLocalGet  = 0x20
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opCall      = 0x10
	opI32Add    = 0x6a
	opEnd       = 0x0b

	heapBase = 1024
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func section(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(body)))...)
	return append(out, body...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint32(len(results)))...)
	return append(out, results...)
}

// forward builds a body that passes n params to imported function idx.
func forward(idx uint32, n int) []byte {
	body := []byte{0x00} // no locals
	for i := 0; i < n; i++ {
		body = append(body, opLocalGet)
		body = append(body, uleb(uint32(i))...)
	}
	body = append(body, opCall)
	body = append(body, uleb(idx)...)
	body = append(body, opEnd)
	return append(uleb(uint32(len(body))), body...)
}

// guestModule returns the binary of a guest importing from module.
func guestModule(module string) []byte {
	const (
		tCall = iota
		tField
		tPtr
		tRelease
	)
	types := vec(
		funcType([]byte{valI64, valI32, valI32, valI32, valI32, valI32, valI32}, []byte{valI32}),
		funcType([]byte{valI64, valI32, valI32, valI32}, []byte{valI32}),
		funcType([]byte{valI32}, []byte{valI32}),
		funcType([]byte{valI64}, nil),
	)

	imp := func(field string, typ uint32) []byte {
		out := append(wasmName(module), wasmName(field)...)
		out = append(out, 0x00)
		return append(out, uleb(typ)...)
	}
	imports := vec(
		imp("call", tCall),
		imp("get_field", tField),
		imp("get_root_object", tPtr),
		imp("release_object", tRelease),
		imp("last_error", tPtr),
	)

	// Defined functions start at index 5.
	funcs := vec(uleb(tPtr), uleb(tCall), uleb(tField), uleb(tPtr), uleb(tRelease), uleb(tPtr))

	memories := vec([]byte{0x00, 0x01})

	heap := []byte{valI32, 0x01, 0x41}
	heap = append(heap, sleb(heapBase)...)
	heap = append(heap, opEnd)
	globals := vec(heap)

	exp := func(field string, kind byte, idx uint32) []byte {
		out := append(wasmName(field), kind)
		return append(out, uleb(idx)...)
	}
	exports := vec(
		exp("memory", 0x02, 0),
		exp("bridge_alloc", 0x00, 5),
		exp("do_call", 0x00, 6),
		exp("do_get_field", 0x00, 7),
		exp("do_root", 0x00, 8),
		exp("do_release", 0x00, 9),
		exp("do_last_error", 0x00, 10),
	)

	allocBody := []byte{0x00, opGlobalGet, 0x00, opGlobalGet, 0x00, opLocalGet, 0x00, opI32Add, opGlobalSet, 0x00, opEnd}
	alloc := append(uleb(uint32(len(allocBody))), allocBody...)

	code := vec(
		alloc,
		forward(0, 7),
		forward(1, 4),
		forward(2, 1),
		forward(3, 1),
		forward(4, 1),
	)

	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, types)...)
	out = append(out, section(2, imports)...)
	out = append(out, section(3, funcs)...)
	out = append(out, section(5, memories)...)
	out = append(out, section(6, globals)...)
	out = append(out, section(7, exports)...)
	out = append(out, section(10, code)...)
	return out
}
