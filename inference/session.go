package inference

import (
	"context"
	"log/slog"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/jtypes"
)

const defaultStartingFuel = 10000

// Session is the state of one call site's inference: its private inference
// variable namespace, the type pool and the diagnostics sink.
// It is mutable and not suitable for concurrent use.
type Session struct {
	pool   TypePool
	logger *slog.Logger
	errs   *infererr.Errors
	next   int
	// pos is the call site diagnostics without a more precise location point at
	pos ast.Range
	// fuel bounds the number of reduction steps of the whole session
	fuel int
}

func NewSession(pool TypePool, logger *slog.Logger) *Session {
	return &Session{
		pool:   pool,
		logger: logger,
		fuel:   defaultStartingFuel,
	}
}

// At sets the position reported by diagnostics that have no better one
func (s *Session) At(pos ast.Range) *Session {
	s.pos = pos
	return s
}

// Fresh mints a new inference variable
func (s *Session) Fresh() InferenceVariable {
	v := InferenceVariable{Index: s.next}
	s.next++
	return v
}

func (s *Session) Errors() *infererr.Errors { return s.errs }

// report records err, unless the same diagnostic was already recorded at
// its position, as happens when an argument is reduced once per invocation mode
func (s *Session) report(err infererr.InferError) {
	for _, reported := range s.errs.Errors() {
		if reported.Code() == err.Code() && reported.Pos() == err.Pos() && reported.Error() == err.Error() {
			return
		}
	}
	s.errs = s.errs.With(infererr.New(err))
	s.logger.Log(context.Background(), err.Severity().Level(), err.Error(), "code", err.Code())
}

// consumeFuel returns false once the session ran out
func (s *Session) consumeFuel() bool {
	s.fuel--
	return s.fuel > 0
}

// UncheckedFunc is notified whenever a conversion from source to target only
// succeeds by unchecked conversion
type UncheckedFunc func(source, target jtypes.Type)

func ignoreUnchecked(jtypes.Type, jtypes.Type) {}
