package inference

import (
	"strings"

	"github.com/cottand/jinfer/jtypes"
	"github.com/cottand/jinfer/util"
)

// Mode is the invocation mode by which a callee was found applicable (JLS 15.12.2)
type Mode int

const (
	ModeNone Mode = iota
	ModeStrict
	ModeLoose
	ModeVariableArity
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLoose:
		return "loose"
	case ModeVariableArity:
		return "variable-arity"
	default:
		return "none"
	}
}

// Inferences is the outcome of inferring the type arguments of one call site.
//
// When inference fails the result is still usable: every type parameter
// maps to jtypes.Error, the result type is jtypes.Error and nothing is thrown.
type Inferences struct {
	DependsOnUncheckedConversion bool
	// TypeParams lists the callee's type parameters in declaration order
	TypeParams  []string
	Resolutions map[string]jtypes.Type
	// NormalResultType is the type of the invocation expression when it completes normally
	NormalResultType jtypes.Type
	ThrownTypes      []jtypes.Type
	Mode             Mode
	// Unchecked lists the "source -> target" conversions that were unchecked
	Unchecked []string
	// ResolutionOrder is the order in which the inference variables were
	// resolved; α<i> stands for the i-th type parameter
	ResolutionOrder string
}

func errorInferences(params []string, mode Mode) *Inferences {
	resolutions := make(map[string]jtypes.Type, len(params))
	for _, p := range params {
		resolutions[p] = jtypes.Error
	}
	return &Inferences{
		TypeParams:       params,
		Resolutions:      resolutions,
		NormalResultType: jtypes.Error,
		Mode:             mode,
	}
}

// Failed reports whether this is the degraded result of a failed inference
func (i *Inferences) Failed() bool { return i.NormalResultType == jtypes.Error }

// Resolution returns what the type parameter name was inferred to be
func (i *Inferences) Resolution(name string) (jtypes.Type, bool) {
	t, ok := i.Resolutions[name]
	return t, ok
}

func (i *Inferences) String() string {
	sb := &strings.Builder{}
	sb.WriteString("[")
	for j, p := range i.TypeParams {
		if j > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p + " := " + i.Resolutions[p].String())
	}
	sb.WriteString("] -> " + i.NormalResultType.String())
	if len(i.ThrownTypes) > 0 {
		sb.WriteString(" throws " + strings.Join(util.Strings(i.ThrownTypes), ", "))
	}
	if i.DependsOnUncheckedConversion {
		sb.WriteString(" (unchecked)")
	}
	return sb.String()
}
