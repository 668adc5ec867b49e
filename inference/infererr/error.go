package infererr

import (
	"fmt"
	"log/slog"
)

// Errors accumulates the diagnostics of one inference run
type Errors struct {
	errs []InferError
}

func (r *Errors) With(err ...InferError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []InferError {
	if r == nil {
		return nil
	}
	return r.errs
}

// HasError reports whether any SEVERE diagnostic was recorded
func (r *Errors) HasError() bool {
	return r.Count(Severe) > 0
}

func (r *Errors) Count(severity Severity) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.errs {
		if e.Severity() == severity {
			n++
		}
	}
	return n
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
