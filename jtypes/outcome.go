package jtypes

// CastOutcome classifies how a value of one type converts to another
type CastOutcome int

const (
	Same CastOutcome = iota
	Box
	Unbox
	ConfirmSafe
	ConfirmChecked
	ConfirmUnchecked
	ConvertingLossless
	ConvertingLossy
	Disjoint
)

var castOutcomeNames = [...]string{
	Same:               "SAME",
	Box:                "BOX",
	Unbox:              "UNBOX",
	ConfirmSafe:        "CONFIRM_SAFE",
	ConfirmChecked:     "CONFIRM_CHECKED",
	ConfirmUnchecked:   "CONFIRM_UNCHECKED",
	ConvertingLossless: "CONVERTING_LOSSLESS",
	ConvertingLossy:    "CONVERTING_LOSSY",
	Disjoint:           "DISJOINT",
}

func (o CastOutcome) String() string {
	if int(o) < len(castOutcomeNames) {
		return castOutcomeNames[o]
	}
	return "CastOutcome(?)"
}

// Compatible reports whether the conversion is permitted in a loose invocation context
func (o CastOutcome) Compatible() bool {
	switch o {
	case ConvertingLossy, Disjoint:
		return false
	}
	return true
}

// worst combines outcomes of a conjunction: unchecked wins over safe, failure wins over both
func worst(a, b CastOutcome) CastOutcome {
	if !a.Compatible() {
		return a
	}
	if !b.Compatible() {
		return b
	}
	if a == ConfirmUnchecked || b == ConfirmUnchecked {
		return ConfirmUnchecked
	}
	if a == Same {
		return b
	}
	return a
}
