package ir

// OpID is an opaque handle to an operation within one Program.
// IDs are assigned in appearance order starting at 1; the zero value is
// never a valid operation.
type OpID int

// InvalidOp is the zero OpID. Queries that walk past the region
// boundary return it in place of an operation.
const InvalidOp OpID = 0

// Kind identifies what an operation does. The set is closed: the
// compiler rejects anything else.
type Kind string

// Value-producing kinds that are ordered purely through their data
// dependencies. They never carry a sequence hint.
const (
	KindStaticRange Kind = "static_range"
	KindDynRange    Kind = "dyn_range"
	KindFby         Kind = "fby"
	KindProjAny     Kind = "proj_any"
	KindProjLast    Kind = "proj_last"
	KindFromScalar  Kind = "from_scalar"
)

// Compute kinds. These are the orderable operations: they may carry an
// explicit sequence hint and they are the only entries in the ordering
// store.
const (
	KindCopy      Kind = "copy"
	KindMap       Kind = "map"
	KindMapReduce Kind = "map_reduce"
	KindAlloc     Kind = "alloc"
	KindFree      Kind = "free"
)

// Kinds lists every valid kind, dependency-only first, in a fixed order
// used by the compiler's schema and error messages.
var Kinds = []Kind{
	KindStaticRange, KindDynRange, KindFby, KindProjAny, KindProjLast,
	KindFromScalar, KindCopy, KindMap, KindMapReduce, KindAlloc, KindFree,
}

// Orderable reports whether operations of this kind participate in the
// ordering store (compute kinds do; value kinds do not).
func (k Kind) Orderable() bool {
	switch k {
	case KindCopy, KindMap, KindMapReduce, KindAlloc, KindFree:
		return true
	}
	return false
}

// Valid reports whether k is one of the closed kind set.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Operand is a use of another operation's result. Feedback marks a
// loop-carried use: the edge is exempt from cycle detection and from
// the dependency closure used to position operations.
type Operand struct {
	Producer OpID `json:"producer"`
	Feedback bool `json:"feedback,omitempty"`
}

// Use builds a plain operand.
func Use(producer OpID) Operand {
	return Operand{Producer: producer}
}

// FeedbackUse builds a loop-carried operand, as on the value side of an
// fby operation.
func FeedbackUse(producer OpID) Operand {
	return Operand{Producer: producer, Feedback: true}
}

// Operation is one node of a program region.
//
// ID, Name and Kind are fixed at construction. Operands, LoopNest and
// Sequence are owned by the enclosing Program and should be changed
// through its mutators so rewrite passes stay auditable.
type Operation struct {
	ID       OpID      `json:"id"`
	Name     string    `json:"name"`
	Kind     Kind      `json:"kind"`
	Operands []Operand `json:"operands,omitempty"`
	LoopNest []string  `json:"loop_nest,omitempty"`
	Sequence *int64    `json:"sequence,omitempty"`
}

// Orderable reports whether the operation may appear in the ordering
// store.
func (o *Operation) Orderable() bool { return o.Kind.Orderable() }

// HasSequence reports whether an explicit sequence hint is present.
func (o *Operation) HasSequence() bool { return o.Sequence != nil }

// SequenceOr returns the explicit hint, or def when none is set.
func (o *Operation) SequenceOr(def int64) int64 {
	if o.Sequence == nil {
		return def
	}
	return *o.Sequence
}
