package usecase

// RequestClass groups requests that share one loading flag and one
// "latest request" slot.
type RequestClass int

// Request classes tracked by the FetchGate.
const (
	ClassNamespaces RequestClass = iota
	ClassGroups
	ClassConfigs
	ClassDetail
	ClassSubmit
	numClasses
)

func (c RequestClass) String() string {
	switch c {
	case ClassNamespaces:
		return "namespaces"
	case ClassGroups:
		return "groups"
	case ClassConfigs:
		return "configs"
	case ClassDetail:
		return "detail"
	case ClassSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// Ticket tags one issued request.
type Ticket struct {
	Class RequestClass
	Seq   uint64
}

// FetchGate tracks the loading flag and the latest ticket per request class.
// It is not safe for concurrent use; it lives on the caller's event loop.
type FetchGate struct {
	seq     uint64
	latest  [numClasses]uint64
	loading [numClasses]bool
}

// NewFetchGate returns an idle gate.
func NewFetchGate() *FetchGate {
	return &FetchGate{}
}

// Begin marks class as loading and returns a ticket that supersedes any
// outstanding one for the same class.
func (g *FetchGate) Begin(class RequestClass) Ticket {
	g.seq++
	g.latest[class] = g.seq
	g.loading[class] = true
	return Ticket{Class: class, Seq: g.seq}
}

// BeginConfigs begins a configs request, refusing to issue one without a
// selected group.
func (g *FetchGate) BeginConfigs(key PageKey) (Ticket, error) {
	if key.Group == "" {
		return Ticket{}, ErrNoGroupSelected
	}
	return g.Begin(ClassConfigs), nil
}

// End settles t. It returns true when t is still the latest ticket for its
// class, in which case the loading flag is cleared. A superseded ticket
// leaves the flag to the newer request.
func (g *FetchGate) End(t Ticket) bool {
	if t.Seq == 0 || g.latest[t.Class] != t.Seq {
		return false
	}
	g.loading[t.Class] = false
	return true
}

// Current reports whether t is the latest ticket for its class.
func (g *FetchGate) Current(t Ticket) bool {
	return t.Seq != 0 && g.latest[t.Class] == t.Seq
}

// Invalidate supersedes any outstanding request of class and clears its flag.
func (g *FetchGate) Invalidate(class RequestClass) {
	g.seq++
	g.latest[class] = g.seq
	g.loading[class] = false
}

// Loading reports whether a request of class is outstanding.
func (g *FetchGate) Loading(class RequestClass) bool {
	return g.loading[class]
}

// Busy reports whether any request is outstanding.
func (g *FetchGate) Busy() bool {
	for _, l := range g.loading {
		if l {
			return true
		}
	}
	return false
}
