package wire

import "fmt"

// FaultKind tags the site at which a codec failure originates, replacing
// the original implementation's small exception hierarchy
// (LLCExc/VLenFieldExc/InvalidIPAddrExc/NoIPAddrExc) with a single typed
// enum per spec.md §9's design note.
type FaultKind int

const (
	// FaultLLC marks a frame whose LLC header does not match the fixed
	// (dsap,ssap,ctrl,nlpid) quadruple IS-IS requires. The frame is
	// dropped silently by the caller; this is not a fatal error.
	FaultLLC FaultKind = iota

	// FaultVLenField marks an encode-time failure: a TLV value exceeded
	// 255 bytes, or an undefined TLV kind was requested.
	FaultVLenField

	// FaultInvalidIPAddr marks an unparsable configured IP address.
	FaultInvalidIPAddr

	// FaultNoIPAddr marks a configured interface with no usable address
	// of either family.
	FaultNoIPAddr
)

func (k FaultKind) String() string {
	switch k {
	case FaultLLC:
		return "LLC"
	case FaultVLenField:
		return "VLenField"
	case FaultInvalidIPAddr:
		return "InvalidIPAddr"
	case FaultNoIPAddr:
		return "NoIPAddr"
	default:
		return "unknown"
	}
}

// Fault is the error type returned for every tagged failure site.
type Fault struct {
	Kind FaultKind
	Msg  string
}

func (f *Fault) Error() string { return fmt.Sprintf("%s: %s", f.Kind, f.Msg) }

func newFault(k FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// ErrLLC reports a frame whose LLC header did not match the IS-IS
// profile.
func ErrLLC(got [4]byte) error {
	return newFault(FaultLLC, "unexpected LLC header dsap=%#x ssap=%#x ctrl=%#x nlpid=%#x",
		got[0], got[1], got[2], got[3])
}

// ErrVLenFieldTooLong reports a TLV encode attempt whose value exceeds
// MaxTLVValueLen.
func ErrVLenFieldTooLong(name string, n int) error {
	return newFault(FaultVLenField, "invalid length %d for %s", n, name)
}

// ErrVLenFieldUndefined reports an attempt to encode an undefined TLV
// kind.
func ErrVLenFieldUndefined(name string) error {
	return newFault(FaultVLenField, "undefined type %q", name)
}

// ErrInvalidIPAddr reports an unparsable configured address.
func ErrInvalidIPAddr(addr string) error {
	return newFault(FaultInvalidIPAddr, "invalid address %q", addr)
}

// ErrNoIPAddr reports an interface with no usable address of either
// family.
func ErrNoIPAddr(dev string) error {
	return newFault(FaultNoIPAddr, "no usable IP address on %q", dev)
}

// AsFault extracts *Fault from err, if any, for callers that need to
// branch on FaultKind (e.g. the event loop continuing past a non-fatal
// FaultLLC but surfacing a FaultNoIPAddr from construction).
func AsFault(err error) (*Fault, bool) {
	f, ok := err.(*Fault)
	return f, ok
}
