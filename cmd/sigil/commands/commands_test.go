package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sigil/internal/app"
	"sigil/internal/domain"
	"sigil/internal/services/identity"
)

const strongPassphrase = "Correct-Horse-9-battery"

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--home", home, "--log-level", "error"}, args...))
	err := execute(root)
	return out.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := run(t, home, args...)
	require.NoError(t, err, "sigil %s", strings.Join(args, " "))
	return out
}

func field(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, label+": "); ok {
			return v
		}
	}
	t.Fatalf("no %q in output:\n%s", label, out)
	return ""
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SIGIL_HOME", "SIGIL_BACKEND", "SIGIL_SEAL", "SIGIL_PASSPHRASE",
		"SIGIL_LOG_LEVEL", "SIGIL_VERIFY_ON_LOGIN", "SIGIL_OPERATION_TIMEOUT", "SIGIL_RETRY_MAX_ELAPSED",
	} {
		t.Setenv(k, "")
	}
}

func TestCLI_RegisterSignVerify(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	out := mustRun(t, home, "register", "alice", "a@x.com")
	require.Contains(t, out, "Registered alice.")
	id := field(t, out, "ID")

	who := mustRun(t, home, "whoami")
	require.Equal(t, "alice", field(t, who, "Name"))
	require.Equal(t, "a@x.com", field(t, who, "Email"))
	require.Equal(t, id, field(t, who, "ID"))
	pub := field(t, who, "Public key")

	fp := mustRun(t, home, "fingerprint")
	require.Equal(t, id, field(t, fp, "ID"))
	require.Len(t, field(t, fp, "Fingerprint"), 20)

	sig := strings.TrimSpace(mustRun(t, home, "sign", "hello"))
	require.Contains(t, mustRun(t, home, "verify", pub, "hello", sig), "Valid signature by "+id)

	_, err := run(t, home, "verify", pub, "hello!", sig)
	require.ErrorIs(t, err, errBadSignature)

	_, err = run(t, home, "verify", "%%%", "hello", sig)
	require.ErrorIs(t, err, domain.ErrMalformedEncoding)
}

func TestCLI_SessionLifecycle(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	mustRun(t, home, "register", "alice", "a@x.com")
	mustRun(t, home, "register", "bob", "b@x.com")

	users := mustRun(t, home, "users")
	require.Contains(t, users, "alice")
	require.Contains(t, users, "bob")
	require.Less(t, strings.Index(users, "alice"), strings.Index(users, "bob"))

	require.Contains(t, mustRun(t, home, "logout"), "Logged out.")
	_, err := run(t, home, "whoami")
	require.ErrorIs(t, err, domain.ErrNoActiveSession)
	_, err = run(t, home, "sign", "x")
	require.ErrorIs(t, err, domain.ErrNoActiveSession)

	_, err = run(t, home, "login", "mallory")
	require.ErrorIs(t, err, domain.ErrUnknownUser)

	require.Contains(t, mustRun(t, home, "login", "alice"), "Logged in as alice")
	require.Equal(t, "alice", field(t, mustRun(t, home, "whoami"), "Name"))
}

func TestCLI_EmptyStore(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	require.Contains(t, mustRun(t, home, "users"), "No users registered.")

	_, err := run(t, home, "register", "alice")
	require.Error(t, err)
}

func TestCLI_BoltBackendFromConfigFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFile), []byte("backend: bolt\n"), 0o600))

	mustRun(t, home, "register", "alice", "a@x.com")
	require.FileExists(t, filepath.Join(home, app.BoltFile))
	require.NoFileExists(t, filepath.Join(home, "users.json"))
	require.Equal(t, "alice", field(t, mustRun(t, home, "whoami"), "Name"))

	// Flags win over the file.
	require.Contains(t, mustRun(t, home, "--backend", "file", "users"), "No users registered.")
}

func TestCLI_Sealed(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	mustRun(t, home, "--seal", "-p", strongPassphrase, "register", "alice", "a@x.com")

	raw, err := os.ReadFile(filepath.Join(home, "users.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "alice")

	t.Setenv("SIGIL_PASSPHRASE", strongPassphrase)
	require.Equal(t, "alice", field(t, mustRun(t, home, "--seal", "whoami"), "Name"))

	_, err = run(t, home, "--seal", "-p", "Wrong-Horse-9-battery", "whoami")
	require.ErrorIs(t, err, domain.ErrCorruptStore)

	_, err = run(t, home, "--seal", "-p", "weak", "whoami")
	require.Error(t, err)
}

func TestCLI_InvalidConfig(t *testing.T) {
	clearEnv(t)
	_, err := run(t, t.TempDir(), "--backend", "tape", "users")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, t.TempDir(), "--config", filepath.Join(t.TempDir(), "missing.yaml"), "users")
	require.Error(t, err)
}

func TestCLI_RegisterReportsReplacedIdentity(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	first := mustRun(t, home, "register", "alice", "a@x.com")
	require.NotContains(t, first, "Replaced:")

	second := mustRun(t, home, "register", "alice", "a@x.com")
	require.Equal(t, field(t, first, "ID"), field(t, second, "Replaced"))
	require.NotEqual(t, field(t, first, "ID"), field(t, second, "ID"))
}

func TestCLI_VerifyNeedsNoStore(t *testing.T) {
	clearEnv(t)
	kp, err := identity.New().GenerateKeypair()
	require.NoError(t, err)
	pub, _, err := kp.Export()
	require.NoError(t, err)
	sig, err := kp.Sign("hello")
	require.NoError(t, err)

	home := filepath.Join(t.TempDir(), "absent")
	out := mustRun(t, home, "--backend", "bolt", "verify", pub, "hello", sig)
	require.Contains(t, out, "Valid signature by "+string(kp.ID()))
	require.NoDirExists(t, home)
}
