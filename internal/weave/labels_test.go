package weave

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
)

var errType = types.Universe.Lookup("error").Type()

func tupleOf(ts ...types.Type) *types.Tuple {
	vars := make([]*types.Var, len(ts))
	for i, t := range ts {
		vars[i] = types.NewVar(token.NoPos, nil, "", t)
	}
	return types.NewTuple(vars...)
}

// labelSetType builds the instrument.LabelSet named type as the type checker
// would see it.
func labelSetType() *types.Named {
	pkg := types.NewPackage(instrumentPath, "instrument")
	labelStruct := types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, pkg, "Key", types.Typ[types.String], false),
		types.NewField(token.NoPos, pkg, "Value", types.Typ[types.String], false),
	}, nil)
	label := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "Label", nil), labelStruct, nil)
	return types.NewNamed(types.NewTypeName(token.NoPos, pkg, "LabelSet", nil),
		types.NewSlice(label), nil)
}

// labelerType builds a named struct with a MetricLabels method returning result.
func labelerType(name string, result types.Type) *types.Named {
	pkg := types.NewPackage("example/svc", "svc")
	named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil),
		types.NewStruct(nil, nil), nil)
	recv := types.NewVar(token.NoPos, pkg, "r", named)
	sig := types.NewSignatureType(recv, nil, nil,
		types.NewTuple(), tupleOf(result), false)
	named.AddMethod(types.NewFunc(token.NoPos, pkg, "MetricLabels", sig))
	return named
}

func TestResolveCapability_NoResults_Default(t *testing.T) {
	require.Equal(t, capDefault, resolveCapability(tupleOf()))
	require.Equal(t, capDefault, resolveCapability(nil))
}

func TestResolveCapability_PlainValue_Default(t *testing.T) {
	require.Equal(t, capDefault, resolveCapability(tupleOf(types.Typ[types.Int])))
}

func TestResolveCapability_TrailingError_Outcome(t *testing.T) {
	require.Equal(t, capOutcome, resolveCapability(tupleOf(types.Typ[types.Int], errType)))
}

func TestResolveCapability_SoleError_Outcome(t *testing.T) {
	require.Equal(t, capOutcome, resolveCapability(tupleOf(errType)))
}

func TestResolveCapability_ErrorNotLast_Default(t *testing.T) {
	require.Equal(t, capDefault, resolveCapability(tupleOf(errType, types.Typ[types.Int])))
}

func TestResolveCapability_Labeler_Labeler(t *testing.T) {
	resp := labelerType("Response", labelSetType())
	require.Equal(t, capLabeler, resolveCapability(tupleOf(resp)))
}

func TestResolveCapability_LabelerWithTrailingError_OutcomeWinsByPriority(t *testing.T) {
	resp := labelerType("Response", labelSetType())
	require.Equal(t, capOutcome, resolveCapability(tupleOf(resp, errType)))
}

func TestResolveCapability_TwoNonErrorResults_Default(t *testing.T) {
	resp := labelerType("Response", labelSetType())
	require.Equal(t, capDefault, resolveCapability(tupleOf(resp, types.Typ[types.Int])))
}

func TestImplementsLabeler_WrongResultType_NotLabeler(t *testing.T) {
	// Same method name, but returning a foreign type: not the capability.
	foreign := labelerType("Imposter", types.NewSlice(types.Typ[types.String]))
	require.False(t, implementsLabeler(foreign))
	require.Equal(t, capDefault, resolveCapability(tupleOf(foreign)))
}

func TestImplementsLabeler_PointerReceiverOnValueResult_Qualifies(t *testing.T) {
	// LookupFieldOrMethod treats the result as addressable, so a value result
	// of a type with a pointer-receiver method still qualifies.
	pkg := types.NewPackage("example/svc", "svc")
	named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "Ptr", nil),
		types.NewStruct(nil, nil), nil)
	recv := types.NewVar(token.NoPos, pkg, "r", types.NewPointer(named))
	sig := types.NewSignatureType(recv, nil, nil,
		types.NewTuple(), tupleOf(labelSetType()), false)
	named.AddMethod(types.NewFunc(token.NoPos, pkg, "MetricLabels", sig))

	require.True(t, implementsLabeler(named))
}

func TestSuspendElem_RecvOnlyChannel_Suspending(t *testing.T) {
	elem, ok := suspendElem(tupleOf(types.NewChan(types.RecvOnly, types.Typ[types.String])))
	require.True(t, ok)
	require.Equal(t, types.Typ[types.String], elem)
}

func TestSuspendElem_BidirectionalChannel_NotSuspending(t *testing.T) {
	_, ok := suspendElem(tupleOf(types.NewChan(types.SendRecv, types.Typ[types.String])))
	require.False(t, ok)
}

func TestSuspendElem_ChannelPlusError_NotSuspending(t *testing.T) {
	_, ok := suspendElem(tupleOf(types.NewChan(types.RecvOnly, types.Typ[types.String]), errType))
	require.False(t, ok)
}

func TestResolveElemCapability(t *testing.T) {
	resp := labelerType("Response", labelSetType())
	require.Equal(t, capLabeler, resolveElemCapability(resp))
	require.Equal(t, capDefault, resolveElemCapability(types.Typ[types.String]))
}

func TestCapabilityKind_String(t *testing.T) {
	require.Equal(t, "outcome", capOutcome.String())
	require.Equal(t, "labeler", capLabeler.String())
	require.Equal(t, "default", capDefault.String())
}
