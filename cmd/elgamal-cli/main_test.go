package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Helper types for unmarshaling JSON responses
type keyPairExport struct {
	SecurityLevel string `json:"security_level"`
	PublicKey     string `json:"public_key"`
	PrivateKey    string `json:"private_key"`
	Fingerprint   string `json:"fingerprint"`
	CreatedAt     string `json:"created_at"`
}

type primeExport struct {
	Prime         string `json:"prime"`
	Bits          int    `json:"bits"`
	Factorization string `json:"factorization"`
	Factors       []struct {
		Q string `json:"q"`
		E int    `json:"e"`
	} `json:"factors"`
}

type encryptedExport struct {
	Mode       string `json:"mode"`
	Units      int    `json:"units"`
	Ciphertext string `json:"ciphertext"`
	StoredID   string `json:"stored_id"`
}

// runCLI executes the elgamal-cli via `go run ./cmd/elgamal-cli` from the repository root.
func runCLI(t *testing.T, timeout time.Duration, args ...string) (stdout string, stderr string, err error) {
	return runCLIWithStdin(t, timeout, "", args...)
}

// runCLIWithStdin runs CLI with stdin input
func runCLIWithStdin(t *testing.T, timeout time.Duration, stdin string, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cmdArgs := append([]string{"run", "./cmd/elgamal-cli"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = filepath.Join("..", "..")
	cmd.Stdin = strings.NewReader(stdin)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

func toyKeygen(t *testing.T, dir string) string {
	t.Helper()
	kpFile := filepath.Join(dir, "keypair.json")
	_, stderr, err := runCLI(t, 60*time.Second, "keygen", "--level", "toy", "--output", kpFile)
	if err != nil {
		t.Fatalf("keygen failed: %v, stderr: %s", err, stderr)
	}
	return kpFile
}

func TestHelpAndVersion(t *testing.T) {
	stdout, _, err := runCLI(t, 30*time.Second, "help")
	if err != nil {
		t.Fatalf("help command failed: %v, out: %s", err, stdout)
	}
	if !strings.Contains(stdout, "elgamal-cli - ElGamal") {
		t.Fatalf("help output does not contain expected header, got: %s", stdout)
	}

	stdout, _, err = runCLI(t, 30*time.Second, "version")
	if err != nil {
		t.Fatalf("version command failed: %v, out: %s", err, stdout)
	}
	if !strings.Contains(stdout, "version") {
		t.Fatalf("version output unexpected: %s", stdout)
	}
}

func TestKeygenOutput(t *testing.T) {
	kpFile := toyKeygen(t, t.TempDir())

	data, err := os.ReadFile(kpFile)
	if err != nil {
		t.Fatalf("failed to read key pair: %v", err)
	}
	var kp keyPairExport
	if err := json.Unmarshal(data, &kp); err != nil {
		t.Fatalf("key pair is not JSON: %v", err)
	}
	if kp.SecurityLevel != "EG-TOY" {
		t.Errorf("security level = %q, want EG-TOY", kp.SecurityLevel)
	}
	if kp.PublicKey == "" || kp.PrivateKey == "" || len(kp.Fingerprint) != 64 {
		t.Errorf("incomplete key pair export: %+v", kp)
	}

	info, err := os.Stat(kpFile)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file permissions = %o, want 600", info.Mode().Perm())
	}
}

func TestEncryptDecryptText(t *testing.T) {
	dir := t.TempDir()
	kpFile := toyKeygen(t, dir)
	ctFile := filepath.Join(dir, "ct.json")
	message := "Top secret message."

	_, stderr, err := runCLI(t, 30*time.Second, "encrypt", "--public-key", kpFile, "--message", message, "--output", ctFile)
	if err != nil {
		t.Fatalf("encrypt failed: %v, stderr: %s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, 30*time.Second, "decrypt", "--private-key", kpFile, "--ciphertext", ctFile)
	if err != nil {
		t.Fatalf("decrypt failed: %v, stderr: %s", err, stderr)
	}
	if out := strings.TrimSpace(stdout); out != message {
		t.Fatalf("decrypted message mismatch: expected %q got %q", message, out)
	}
}

func TestEncryptTextRejectsBinaryInput(t *testing.T) {
	dir := t.TempDir()
	kpFile := toyKeygen(t, dir)
	inFile := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(inFile, []byte{'a', 0xff, 'b'}, 0600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	ctFile := filepath.Join(dir, "ct.json")

	_, stderr, err := runCLI(t, 30*time.Second, "encrypt", "--public-key", kpFile, "--input", inFile, "--output", ctFile)
	if err == nil {
		t.Fatalf("expected failure for invalid UTF-8 input")
	}
	if !strings.Contains(stderr, "not valid UTF-8") {
		t.Fatalf("unexpected error output: %s", stderr)
	}
	if _, err := os.Stat(ctFile); !os.IsNotExist(err) {
		t.Fatalf("ciphertext file should not be written, stat err: %v", err)
	}
}

func TestEncryptDecryptInt(t *testing.T) {
	dir := t.TempDir()
	kpFile := toyKeygen(t, dir)
	ctFile := filepath.Join(dir, "ct.json")

	_, stderr, err := runCLI(t, 30*time.Second, "encrypt", "--public-key", kpFile, "--mode", "int", "--message", "1234", "--output", ctFile)
	if err != nil {
		t.Fatalf("encrypt failed: %v, stderr: %s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, 30*time.Second, "decrypt", "--private-key", kpFile, "--ciphertext", ctFile)
	if err != nil {
		t.Fatalf("decrypt failed: %v, stderr: %s", err, stderr)
	}
	if out := strings.TrimSpace(stdout); out != "1234" {
		t.Fatalf("decrypted integer mismatch: got %q", out)
	}
}

func TestEncryptStdinMessage(t *testing.T) {
	dir := t.TempDir()
	kpFile := toyKeygen(t, dir)
	ctFile := filepath.Join(dir, "ct.json")

	_, stderr, err := runCLIWithStdin(t, 30*time.Second, "from stdin", "encrypt", "--public-key", kpFile, "--output", ctFile)
	if err != nil {
		t.Fatalf("encrypt failed: %v, stderr: %s", err, stderr)
	}

	data, _ := os.ReadFile(ctFile)
	var ct encryptedExport
	if err := json.Unmarshal(data, &ct); err != nil {
		t.Fatalf("ciphertext is not JSON: %v", err)
	}
	if ct.Mode != "text" || ct.Units != len("from stdin") {
		t.Fatalf("unexpected ciphertext export: %+v", ct)
	}
}

func TestSignVerify(t *testing.T) {
	dir := t.TempDir()
	kpFile := toyKeygen(t, dir)
	sigFile := filepath.Join(dir, "sig.json")
	message := "It's me. Trust me."

	for _, hash := range []string{"sha256", "sha3"} {
		_, stderr, err := runCLI(t, 30*time.Second, "sign", "--private-key", kpFile, "--message", message, "--hash", hash, "--output", sigFile)
		if err != nil {
			t.Fatalf("sign failed: %v, stderr: %s", err, stderr)
		}

		stdout, stderr, err := runCLI(t, 30*time.Second, "verify", "--public-key", kpFile, "--message", message, "--signature", sigFile)
		if err != nil {
			t.Fatalf("verify (%s) failed: %v, stderr: %s, stdout: %s", hash, err, stderr, stdout)
		}
		var res map[string]interface{}
		if err := json.Unmarshal([]byte(stdout), &res); err != nil {
			t.Fatalf("verify output is not JSON: %v", err)
		}
		if valid, _ := res["valid"].(bool); !valid {
			t.Fatalf("expected valid signature with %s, got %s", hash, stdout)
		}
	}

	// a different message must not verify
	stdout, _, err := runCLI(t, 30*time.Second, "verify", "--public-key", kpFile, "--message", "It's me. Trust me!", "--signature", sigFile)
	if err == nil {
		t.Fatalf("verify of a tampered message succeeded: %s", stdout)
	}
	if !strings.Contains(stdout, `"valid": false`) {
		t.Fatalf("expected valid=false, got %s", stdout)
	}
}

func TestPrimeCommand(t *testing.T) {
	stdout, stderr, err := runCLI(t, 30*time.Second, "prime", "--level", "toy")
	if err != nil {
		t.Fatalf("prime failed: %v, stderr: %s", err, stderr)
	}
	var res primeExport
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("prime output is not JSON: %v", err)
	}
	if res.Bits < 2 || len(res.Factors) == 0 || res.Factors[0].Q != "2" {
		t.Fatalf("unexpected prime export: %+v", res)
	}
}

func TestInspect(t *testing.T) {
	kpFile := toyKeygen(t, t.TempDir())

	stdout, stderr, err := runCLI(t, 30*time.Second, "inspect", "--private-key", kpFile, "--verbose")
	if err != nil {
		t.Fatalf("inspect failed: %v, stderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, `"has_private": true`) {
		t.Fatalf("inspect output unexpected: %s", stdout)
	}
	if !strings.Contains(stderr, "<redacted>") {
		t.Fatalf("verbose dump should redact k, got: %s", stderr)
	}
}

func TestKeyStore(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "keys.db")
	kpFile := filepath.Join(dir, "kp.json")

	_, stderr, err := runCLI(t, 60*time.Second, "keygen", "--level", "toy", "--db", dbFile, "--name", "alice", "--output", kpFile)
	if err != nil {
		t.Fatalf("keygen with store failed: %v, stderr: %s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, 30*time.Second, "encrypt", "--public-key", kpFile, "--message", "stored", "--db", dbFile, "--name", "alice")
	if err != nil {
		t.Fatalf("encrypt with store failed: %v, stderr: %s", err, stderr)
	}
	var ct encryptedExport
	if err := json.Unmarshal([]byte(stdout), &ct); err != nil || ct.StoredID == "" {
		t.Fatalf("expected a stored id, got %s", stdout)
	}

	stdout, stderr, err = runCLI(t, 30*time.Second, "keys", "--db", dbFile)
	if err != nil {
		t.Fatalf("keys failed: %v, stderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, `"name": "alice"`) {
		t.Fatalf("key listing does not contain alice: %s", stdout)
	}
}

func TestOutputFormatHex(t *testing.T) {
	dir := t.TempDir()
	kpFile := filepath.Join(dir, "kp.json")
	ctFile := filepath.Join(dir, "ct.json")

	_, stderr, err := runCLI(t, 60*time.Second, "keygen", "--level", "toy", "--format", "hex", "--output", kpFile)
	if err != nil {
		t.Fatalf("keygen failed: %v, stderr: %s", err, stderr)
	}
	_, stderr, err = runCLI(t, 30*time.Second, "encrypt", "--public-key", kpFile, "--format", "hex", "--message", "hex", "--output", ctFile)
	if err != nil {
		t.Fatalf("encrypt failed: %v, stderr: %s", err, stderr)
	}
	stdout, stderr, err := runCLI(t, 30*time.Second, "decrypt", "--private-key", kpFile, "--ciphertext", ctFile)
	if err != nil {
		t.Fatalf("decrypt failed: %v, stderr: %s", err, stderr)
	}
	if strings.TrimSpace(stdout) != "hex" {
		t.Fatalf("hex round trip failed: %q", stdout)
	}
}

func TestTimingFlag(t *testing.T) {
	_, stderr, err := runCLI(t, 60*time.Second, "keygen", "--level", "toy", "--timing", "--output", filepath.Join(t.TempDir(), "kp.json"))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if !strings.Contains(stderr, "Key generation took") {
		t.Fatalf("timing output missing: %s", stderr)
	}
}

func TestMissingRequiredFlag(t *testing.T) {
	_, stderr, err := runCLI(t, 30*time.Second, "encrypt", "--message", "x")
	if err == nil {
		t.Fatalf("expected failure without --public-key")
	}
	if !strings.Contains(stderr, "--public-key is required") {
		t.Fatalf("unexpected error output: %s", stderr)
	}
}

func TestInvalidSecurityLevel(t *testing.T) {
	_, stderr, err := runCLI(t, 30*time.Second, "keygen", "--level", "9999")
	if err == nil {
		t.Fatalf("expected failure for invalid level")
	}
	if !strings.Contains(stderr, "invalid security level") {
		t.Fatalf("unexpected error output: %s", stderr)
	}
}

func TestBenchmarkCommand(t *testing.T) {
	stdout, stderr, err := runCLI(t, 60*time.Second, "benchmark", "--level", "toy", "--iterations", "2")
	if err != nil {
		t.Fatalf("benchmark failed: %v, stderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Benchmark complete!") {
		t.Fatalf("benchmark output unexpected: %s", stdout)
	}
}
