package weave

import (
	"go/types"
)

// instrumentPath is the runtime package woven code calls into.
const instrumentPath = "git.home.luguber.info/inful/metricweave/pkg/instrument"

// capabilityKind identifies how labels are extracted from a function's
// produced value. The choice is made here, at weave time, from the statically
// known result types; the woven source contains no type inspection.
type capabilityKind int

const (
	capDefault capabilityKind = iota // empty label set, applies to every type
	capOutcome                       // trailing error discriminant -> result=ok|err
	capLabeler                       // sole result implements instrument.Labeler
)

func (k capabilityKind) String() string {
	switch k {
	case capOutcome:
		return "outcome"
	case capLabeler:
		return "labeler"
	default:
		return "default"
	}
}

// capabilitySpec is one entry of the priority-ordered capability registry.
type capabilitySpec struct {
	kind    capabilityKind
	applies func(results *types.Tuple) bool
}

// capabilities is consulted in order, most specific first. The final entry
// applies to everything, so every return shape resolves to exactly one kind.
// New shapes (e.g. HTTP-status returns) slot in here without touching the
// transformer.
var capabilities = []capabilitySpec{
	{kind: capOutcome, applies: appliesOutcome},
	{kind: capLabeler, applies: appliesLabeler},
	{kind: capDefault, applies: func(*types.Tuple) bool { return true }},
}

// resolveCapability selects the most specific capability for a result tuple.
func resolveCapability(results *types.Tuple) capabilityKind {
	for _, spec := range capabilities {
		if spec.applies(results) {
			return spec.kind
		}
	}
	return capDefault
}

// resolveElemCapability selects the capability for a suspending function's
// channel element type. The outcome capability needs a trailing error result
// and so never applies to the single-channel shape.
func resolveElemCapability(elem types.Type) capabilityKind {
	if implementsLabeler(elem) {
		return capLabeler
	}
	return capDefault
}

// appliesOutcome reports whether the final result is the error discriminant
// of a two-variant outcome. Payload types are irrelevant.
func appliesOutcome(results *types.Tuple) bool {
	if results == nil || results.Len() == 0 {
		return false
	}
	return isErrorType(results.At(results.Len() - 1).Type())
}

// appliesLabeler reports whether the sole result contributes its own labels.
func appliesLabeler(results *types.Tuple) bool {
	if results == nil || results.Len() != 1 {
		return false
	}
	return implementsLabeler(results.At(0).Type())
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// implementsLabeler reports whether t declares
//
//	MetricLabels() instrument.LabelSet
//
// with the LabelSet named type from this module's runtime package. The lookup
// treats t as addressable, so pointer-receiver declarations qualify too.
func implementsLabeler(t types.Type) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, "MetricLabels")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	return isLabelSet(sig.Results().At(0).Type())
}

// isLabelSet matches the instrument.LabelSet named type by package path, so
// the woven call assigns without conversion.
func isLabelSet(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj.Name() != "LabelSet" || obj.Pkg() == nil {
		return false
	}
	return obj.Pkg().Path() == instrumentPath
}

// suspendElem returns the element type of a suspending function's result.
// A function is suspending exactly when its sole result is a receive-only
// channel: the future shape that must be awaited before the value exists.
func suspendElem(results *types.Tuple) (types.Type, bool) {
	if results == nil || results.Len() != 1 {
		return nil, false
	}
	ch, ok := results.At(0).Type().Underlying().(*types.Chan)
	if !ok || ch.Dir() != types.RecvOnly {
		return nil, false
	}
	return ch.Elem(), true
}
