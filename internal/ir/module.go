package ir

// Module is the compile unit: a sequence of Instruction records plus the
// metadata the probe and encoders need to act on them.
//
// The instruction sequence is backed by a store whose capacity grows
// geometrically (doubling) and is never shrunk, independent of the
// logical instruction count. Optimizer passes that delete instructions
// do so by shortening the logical count (Replace), never by
// reallocating a smaller backing array — this keeps earlier-returned
// Instructions snapshots (e.g. fusion-site windows) valid for the
// lifetime of the Module.
type Module struct {
	store      instrStore
	Target     Target
	VectorWidthBytes int
	SourceName string
}

// NewModule creates an empty module for the named source.
func NewModule(sourceName string) *Module {
	return &Module{
		store:      newInstrStore(16),
		SourceName: sourceName,
	}
}

// Len returns the logical instruction count.
func (m *Module) Len() int { return m.store.count }

// Cap returns the backing store's current capacity. Exposed for tests
// that verify the store/count independence invariant; production code
// has no use for it.
func (m *Module) Cap() int { return len(m.store.data) }

// At returns the instruction at logical index i.
func (m *Module) At(i int) Instruction { return m.store.data[i] }

// Set overwrites the instruction at logical index i in place.
func (m *Module) Set(i int, in Instruction) { m.store.data[i] = in }

// Append adds an instruction to the end of the module, growing the
// backing store if it is full.
func (m *Module) Append(in Instruction) { m.store.push(in) }

// Instructions returns a live view of the logical instruction slice.
// Mutating elements through it mutates the module; appending past its
// length does not — use Append or Replace for that.
func (m *Module) Instructions() []Instruction { return m.store.data[:m.store.count] }

// Replace overwrites the module's logical contents with seq. It copies
// into the existing backing array, growing geometrically if seq is
// larger than current capacity, but never allocates a smaller array
// than it already holds. This is how every optimizer pass "removes"
// instructions: by replacing the sequence with a shorter one.
func (m *Module) Replace(seq []Instruction) {
	m.store.replace(seq)
}

// instrStore is the growable backing array described above.
type instrStore struct {
	data  []Instruction
	count int
}

func newInstrStore(initialCap int) instrStore {
	if initialCap < 1 {
		initialCap = 1
	}
	return instrStore{data: make([]Instruction, initialCap)}
}

func (s *instrStore) push(in Instruction) {
	if s.count == len(s.data) {
		s.grow(s.count + 1)
	}
	s.data[s.count] = in
	s.count++
}

func (s *instrStore) replace(seq []Instruction) {
	if len(seq) > len(s.data) {
		s.grow(len(seq))
	}
	copy(s.data, seq)
	s.count = len(seq)
}

// grow doubles capacity until it can hold need, matching the spec's
// "geometric, doubling" backing-store growth contract exactly rather
// than leaning on append()'s unspecified growth factor.
func (s *instrStore) grow(need int) {
	newCap := len(s.data)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < need {
		newCap *= 2
	}
	newData := make([]Instruction, newCap)
	copy(newData, s.data[:s.count])
	s.data = newData
}
