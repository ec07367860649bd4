package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive_ExplicitName_UsedVerbatim(t *testing.T) {
	n := Derive("req_latency", []string{"svc", "handlers", "CreateUser"})

	require.Equal(t, "req_latency_total", n.Counter)
	require.Equal(t, "req_latency_duration_seconds", n.Histogram)
}

func TestDerive_NoExplicitName_JoinsDeclPath(t *testing.T) {
	n := Derive("", []string{"svc", "create_user"})

	require.Equal(t, "svc_create_user_total", n.Counter)
	require.Equal(t, "svc_create_user_duration_seconds", n.Histogram)
}

func TestDerive_SharedStem(t *testing.T) {
	n := Derive("", []string{"a", "b", "c"})

	require.Equal(t, "a_b_c_total", n.Counter)
	require.Equal(t, "a_b_c_duration_seconds", n.Histogram)
}

func TestDerive_DisallowedCharactersPassThrough(t *testing.T) {
	// Backend validity is the backend's concern; nothing is escaped here.
	n := Derive("req-latency", nil)

	require.Equal(t, "req-latency_total", n.Counter)
}

func TestDeclPath_SplitsSlashesAndDots(t *testing.T) {
	p := DeclPath("example.com/svc/handlers", "", "CreateUser")

	require.Equal(t, []string{"example", "com", "svc", "handlers", "CreateUser"}, p)
}

func TestDeclPath_MethodIncludesReceiver(t *testing.T) {
	p := DeclPath("svc/store", "UserStore", "Get")

	require.Equal(t, []string{"svc", "store", "UserStore", "Get"}, p)
}
