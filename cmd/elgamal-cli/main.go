// Package main provides the elgamal-cli command line interface for ElGamal operations.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/cipher"
	"github.com/BackendStack21/elgamal-go/core"
	"github.com/BackendStack21/elgamal-go/keys"
	"github.com/BackendStack21/elgamal-go/numtheory"
	"github.com/BackendStack21/elgamal-go/sign"
	"github.com/BackendStack21/elgamal-go/store"
	"github.com/BackendStack21/elgamal-go/utils"
)

const (
	version = "1.0.0"
	appName = "elgamal-cli"
)

// MaxInputFileSize bounds every file the CLI reads.
const MaxInputFileSize = 100 * 1024 * 1024

// OutputFormat represents the output format for serialization
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// Encryption modes
const (
	ModeText  = "text"  // one cryptogram per rune
	ModeInt   = "int"   // a single integer in [0, p)
	ModeBytes = "bytes" // one PKCS #1 v1.5 padded unit
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	SecurityLevel elgamal.SecurityLevel
	OutputFormat  OutputFormat
	OutputFile    string
	InputFile     string
	Workers       int // -1 keeps the level default
	DBPath        string
	Verbose       bool
	Timing        bool
}

// KeyPairExport represents an exported key pair
type KeyPairExport struct {
	SecurityLevel string `json:"security_level"`
	PublicKey     string `json:"public_key"`
	PrivateKey    string `json:"private_key"`
	Fingerprint   string `json:"fingerprint"`
	CreatedAt     string `json:"created_at"`
	KeyHMAC       string `json:"key_hmac,omitempty"` // accidental corruption check only
}

// FactorExport is one prime power of p-1.
type FactorExport struct {
	Q string `json:"q"`
	E int    `json:"e"`
}

// PrimeExport represents a constructed prime and the factorization of p-1
type PrimeExport struct {
	Prime         string         `json:"prime"`
	Bits          int            `json:"bits"`
	Factorization string         `json:"factorization"`
	Factors       []FactorExport `json:"factors"`
}

// EncryptedExport represents an exported ciphertext
type EncryptedExport struct {
	Mode       string `json:"mode"`
	Units      int    `json:"units"`
	Ciphertext string `json:"ciphertext"`
	StoredID   string `json:"stored_id,omitempty"`
}

// SignatureExport represents an exported signature
type SignatureExport struct {
	Message   string `json:"message"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// KeyInfo is the inspect output.
type KeyInfo struct {
	G           string `json:"g"`
	B           string `json:"b"`
	P           string `json:"p"`
	Bits        int    `json:"bits"`
	Fingerprint string `json:"fingerprint"`
	HasPrivate  bool   `json:"has_private"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("ElGamal library version %s\n", elgamal.Version)
	case "keygen":
		cmdKeygen(args)
	case "prime":
		cmdPrime(args)
	case "encrypt", "enc":
		cmdEncrypt(args)
	case "decrypt", "dec":
		cmdDecrypt(args)
	case "sign":
		cmdSign(args)
	case "verify":
		cmdVerify(args)
	case "inspect":
		cmdInspect(args)
	case "keys":
		cmdKeys(args)
	case "benchmark":
		cmdBenchmark(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - ElGamal encryption and signatures CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    keygen      Generate a key pair
    prime       Construct a prime with a known factorization of p-1
    encrypt     Encrypt a message with a public key
    decrypt     Decrypt a ciphertext with a private key
    sign        Sign a message
    verify      Verify a signature
    inspect     Show the values of a key
    keys        List the keys in a key store
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

OPTIONS:
    --level <toy|512|1024|2048>  Security level (default: 1024)
    --workers <n>                Prime construction workers (0: one per CPU)
    --format <hex|base64>        Binary encoding (default: base64)
    --output <file>              Output file (default: stdout)
    --input <file>               Read the message from a file
    --db <file>                  SQLite key store
    --name <name>                Key name in the key store
    --mode <text|int|bytes>      Encryption mode (default: text)
    --hash <sha256|sha3>         Signature hash (default: sha256)
    --timing                     Show timing information
    --verbose                    Verbose output

EXAMPLES:
    # Generate a key pair and keep a copy in a key store
    %s keygen --level 1024 --output keypair.json --db keys.db --name alice

    # Encrypt a message, one unit per character
    %s encrypt --public-key keypair.json --message "Top secret message." --output ct.json

    # Decrypt it
    %s decrypt --private-key keypair.json --ciphertext ct.json

    # Sign and verify
    %s sign --private-key keypair.json --message "It's me. Trust me." --output sig.json
    %s verify --public-key keypair.json --message "It's me. Trust me." --signature sig.json

    # Run benchmarks
    %s benchmark --level 512 --iterations 5
`, appName, appName, appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Key Commands
// ============================================================================

func generateKeyHMAC(publicKey, privateKey string) string {
	h := hmac.New(sha256.New, []byte(publicKey))
	h.Write([]byte(privateKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func levelParams(config CLIConfig) elgamal.Params {
	params, err := core.GetParams(config.SecurityLevel)
	if err != nil {
		fatal("Error loading parameters", err)
	}
	if config.Workers >= 0 {
		params.Workers = config.Workers
	}
	return params
}

func cmdKeygen(args []string) {
	config := parseConfig(args)
	name := getArg(args, "--name", "-n")
	params := levelParams(config)

	start := time.Now()
	sk, pk, err := keys.GenerateKeys(context.Background(), nil, params)
	elapsed := time.Since(start)
	if err != nil {
		fatal("Error generating key pair", err)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Key generation took: %v\n", elapsed)
	}

	pkBytes := keys.SerializePublicKey(pk)
	skBytes := keys.SerializePrivateKey(sk)
	defer utils.Zeroize(skBytes)
	fingerprint := hex.EncodeToString(keys.Fingerprint(pk))

	export := KeyPairExport{
		SecurityLevel: string(config.SecurityLevel),
		PublicKey:     encodeBytes(pkBytes, config.OutputFormat),
		PrivateKey:    encodeBytes(skBytes, config.OutputFormat),
		Fingerprint:   fingerprint,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	export.KeyHMAC = generateKeyHMAC(export.PublicKey, export.PrivateKey)

	if config.DBPath != "" {
		if name == "" {
			name = fingerprint[:16]
		}
		s := openStore(config.DBPath)
		defer s.Close()
		id, err := s.PutKeyPair(context.Background(), name, sk)
		if err != nil {
			fatal("Error storing key pair", err)
		}
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "Stored key pair %q as %s\n", name, id)
		}
	}

	writeJSON(export, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Generated key pair with security level: %s\n", config.SecurityLevel)
		fmt.Fprintf(os.Stderr, "Modulus: %d bits\n", pk.P.BitLen())
		fmt.Fprintf(os.Stderr, "Public key size: %d bytes\n", len(pkBytes))
	}
}

func cmdPrime(args []string) {
	config := parseConfig(args)
	params := levelParams(config)

	workers := params.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	start := time.Now()
	p, f, err := numtheory.ConstructPrimeConcurrent(context.Background(), nil, params.Construct, workers)
	elapsed := time.Since(start)
	if err != nil {
		fatal("Error constructing prime", err)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Prime construction took: %v\n", elapsed)
	}

	export := PrimeExport{
		Prime:         p.String(),
		Bits:          p.BitLen(),
		Factorization: f.String(),
	}
	for _, factor := range f {
		export.Factors = append(export.Factors, FactorExport{Q: factor.Q.String(), E: factor.E})
	}
	writeJSON(export, config.OutputFile)
}

func cmdInspect(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	skFile := getArg(args, "--private-key", "-sk")

	var (
		pk *elgamal.PublicKey
		sk *elgamal.PrivateKey
	)
	switch {
	case skFile != "":
		sk = loadPrivateKey(skFile)
		pk = &sk.PublicKey
	case pkFile != "":
		pk = loadPublicKey(pkFile)
	default:
		fmt.Fprintf(os.Stderr, "Error: --public-key or --private-key is required\n")
		os.Exit(1)
	}

	info := KeyInfo{
		G:           pk.G.String(),
		B:           pk.B.String(),
		P:           pk.P.String(),
		Bits:        pk.P.BitLen(),
		Fingerprint: hex.EncodeToString(keys.Fingerprint(pk)),
		HasPrivate:  sk != nil,
	}
	writeJSON(info, config.OutputFile)

	if config.Verbose {
		if sk != nil {
			fmt.Fprint(os.Stderr, spew.Sdump(sk))
		} else {
			fmt.Fprint(os.Stderr, spew.Sdump(pk))
		}
	}
}

func cmdKeys(args []string) {
	config := parseConfig(args)
	if config.DBPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --db is required\n")
		os.Exit(1)
	}
	s := openStore(config.DBPath)
	defer s.Close()

	recs, err := s.ListKeys(context.Background())
	if err != nil {
		fatal("Error listing keys", err)
	}

	type keyEntry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Fingerprint string `json:"fingerprint"`
		Bits        int    `json:"bits"`
		HasPrivate  bool   `json:"has_private"`
		CreatedAt   string `json:"created_at"`
	}
	entries := make([]keyEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, keyEntry{
			ID:          rec.ID.String(),
			Name:        rec.Name,
			Fingerprint: rec.Fingerprint,
			Bits:        rec.Bits,
			HasPrivate:  rec.HasPrivate,
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(entries, config.OutputFile)
}

// ============================================================================
// Cipher Commands
// ============================================================================

func cmdEncrypt(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	mode := getArg(args, "--mode", "")
	name := getArg(args, "--name", "-n")
	if mode == "" {
		mode = ModeText
	}

	if pkFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --public-key is required\n")
		os.Exit(1)
	}

	pk := loadPublicKey(pkFile)
	msgBytes := readMessage(args, config)

	start := time.Now()
	var (
		ctBytes []byte
		cs      []elgamal.Cryptogram
		units   int
	)
	switch mode {
	case ModeText:
		var err error
		cs, err = cipher.EncryptString(nil, pk, string(msgBytes))
		if err != nil {
			fatal("Error encrypting", err)
		}
		ctBytes = cipher.SerializeCryptograms(cs)
		units = len(cs)
	case ModeInt:
		m, ok := new(big.Int).SetString(strings.TrimSpace(string(msgBytes)), 10)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: message is not a decimal integer\n")
			os.Exit(1)
		}
		c, err := cipher.Encrypt(nil, pk, m)
		if err != nil {
			fatal("Error encrypting", err)
		}
		ctBytes = cipher.SerializeCryptogram(c)
		units = 1
	case ModeBytes:
		c, err := cipher.EncryptBytes(nil, pk, msgBytes)
		if err != nil {
			fatal("Error encrypting", err)
		}
		ctBytes = cipher.SerializeCryptogram(c)
		units = 1
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid mode '%s'. Must be one of: text, int, bytes\n", mode)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Encryption took: %v\n", elapsed)
	}

	export := EncryptedExport{
		Mode:       mode,
		Units:      units,
		Ciphertext: encodeBytes(ctBytes, config.OutputFormat),
	}

	if config.DBPath != "" && mode == ModeText {
		if name == "" {
			fmt.Fprintf(os.Stderr, "Error: --name is required with --db\n")
			os.Exit(1)
		}
		s := openStore(config.DBPath)
		defer s.Close()
		rec, err := s.FindKey(context.Background(), name)
		if err != nil {
			fatal("Error finding key", err)
		}
		id, err := s.PutCryptograms(context.Background(), rec.ID, cs)
		if err != nil {
			fatal("Error storing ciphertext", err)
		}
		export.StoredID = id.String()
	}

	writeJSON(export, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Encryption successful\n")
		fmt.Fprintf(os.Stderr, "Message size: %d bytes\n", len(msgBytes))
		fmt.Fprintf(os.Stderr, "Ciphertext size: %d bytes\n", len(ctBytes))
	}
}

func cmdDecrypt(args []string) {
	config := parseConfig(args)
	skFile := getArg(args, "--private-key", "-sk")
	ctFile := getArg(args, "--ciphertext", "-ct")

	if skFile == "" || ctFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --private-key and --ciphertext are required\n")
		os.Exit(1)
	}

	sk := loadPrivateKey(skFile)
	defer keys.Destroy(sk)
	ctData, err := loadKeyFromFile(ctFile, "ciphertext")
	if err != nil {
		fatal("Error loading ciphertext", err)
	}
	mode := loadField(ctFile, "mode")
	if mode == "" {
		mode = ModeText
	}

	start := time.Now()
	var plaintext string
	switch mode {
	case ModeText:
		cs, err := cipher.DeserializeCryptograms(ctData)
		if err != nil {
			fatal("Error deserializing ciphertext", err)
		}
		plaintext, err = cipher.DecryptString(sk, cs)
		if err != nil {
			fatal("Error decrypting", err)
		}
	case ModeInt, ModeBytes:
		c, err := cipher.DeserializeCryptogram(ctData)
		if err != nil {
			fatal("Error deserializing ciphertext", err)
		}
		if mode == ModeInt {
			m, err := cipher.Decrypt(sk, c)
			if err != nil {
				fatal("Error decrypting", err)
			}
			plaintext = m.String()
		} else {
			msg, err := cipher.DecryptBytes(sk, c)
			if err != nil {
				fatal("Error decrypting", err)
			}
			plaintext = string(msg)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown ciphertext mode '%s'\n", mode)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Decryption took: %v\n", elapsed)
	}

	writeOutput([]byte(plaintext), config.OutputFile)
}

// ============================================================================
// Signature Commands
// ============================================================================

func signerFor(args []string) (*sign.Signer, string) {
	switch h := getArg(args, "--hash", ""); h {
	case "", "sha256":
		return sign.NewSigner(nil), "sha256"
	case "sha3", "sha3-256":
		return sign.NewSHA3Signer(), "sha3-256"
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid hash '%s'. Must be one of: sha256, sha3\n", h)
		os.Exit(1)
		return nil, ""
	}
}

func cmdSign(args []string) {
	config := parseConfig(args)
	skFile := getArg(args, "--private-key", "-sk")
	signer, hashName := signerFor(args)

	if skFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --private-key is required\n")
		os.Exit(1)
	}

	sk := loadPrivateKey(skFile)
	defer keys.Destroy(sk)
	msgBytes := readMessage(args, config)

	start := time.Now()
	sig, err := signer.Sign(nil, sk, msgBytes)
	elapsed := time.Since(start)
	if err != nil {
		fatal("Error signing", err)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Signing took: %v\n", elapsed)
	}

	sigBytes := sign.SerializeSignature(sig)
	export := SignatureExport{
		Message:   encodeBytes(msgBytes, config.OutputFormat),
		Hash:      hashName,
		Signature: encodeBytes(sigBytes, config.OutputFormat),
	}
	writeJSON(export, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Signature successful\n")
		fmt.Fprintf(os.Stderr, "Message size: %d bytes\n", len(msgBytes))
		fmt.Fprintf(os.Stderr, "Signature size: %d bytes\n", len(sigBytes))
	}
}

func cmdVerify(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	sigFile := getArg(args, "--signature", "-sig")

	if pkFile == "" || sigFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --public-key and --signature are required\n")
		os.Exit(1)
	}

	// the signature file names its hash unless --hash overrides it
	if getArg(args, "--hash", "") == "" {
		if h := loadField(sigFile, "hash"); h != "" {
			args = append(args, "--hash", h)
		}
	}
	signer, _ := signerFor(args)

	pk := loadPublicKey(pkFile)
	msgBytes := readMessage(args, config)

	sigData, err := loadKeyFromFile(sigFile, "signature")
	if err != nil {
		fatal("Error loading signature", err)
	}
	sig, err := sign.DeserializeSignature(sigData)
	if err != nil {
		fatal("Error deserializing signature", err)
	}

	start := time.Now()
	valid := signer.Verify(pk, msgBytes, sig)
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Verification took: %v\n", elapsed)
	}

	writeJSON(map[string]interface{}{
		"valid":   valid,
		"message": encodeBytes(msgBytes, config.OutputFormat),
	}, config.OutputFile)

	if !valid {
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "Signature is INVALID\n")
		}
		os.Exit(1)
	}
	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Signature is VALID\n")
	}
}

// ============================================================================
// Benchmark Command
// ============================================================================

func cmdBenchmark(args []string) {
	config := parseConfig(args)
	params := levelParams(config)
	iterations := 10
	if s := getArg(args, "--iterations", "-n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid iteration count '%s'\n", s)
			os.Exit(1)
		}
		iterations = n
	}
	if iterations < 1 {
		iterations = 1
	}

	fmt.Printf("ElGamal Benchmark Results\n")
	fmt.Printf("=========================\n")
	fmt.Printf("Security Level: %s\n", config.SecurityLevel)
	fmt.Printf("Iterations: %d\n\n", iterations)

	var (
		sk    *elgamal.PrivateKey
		total time.Duration
	)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		sk, _, err = keys.GenerateKeys(context.Background(), nil, params)
		total += time.Since(start)
		if err != nil {
			fatal("Keygen error", err)
		}
	}
	fmt.Printf("  KeyGen:   %v (avg, %d-bit modulus)\n", total/time.Duration(iterations), sk.P.BitLen())

	m := big.NewInt(0x2a)
	var c *elgamal.Cryptogram
	total = 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		c, err = cipher.Encrypt(nil, &sk.PublicKey, m)
		total += time.Since(start)
		if err != nil {
			fatal("Encrypt error", err)
		}
	}
	fmt.Printf("  Encrypt:  %v (avg)\n", total/time.Duration(iterations))

	total = 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_, err := cipher.Decrypt(sk, c)
		total += time.Since(start)
		if err != nil {
			fatal("Decrypt error", err)
		}
	}
	fmt.Printf("  Decrypt:  %v (avg)\n", total/time.Duration(iterations))

	msg, err := utils.SecureRandomBytes(nil, 64)
	if err != nil {
		fatal("Random message error", err)
	}
	var sig *elgamal.Signature
	total = 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		sig, err = sign.Sign(nil, sk, msg)
		total += time.Since(start)
		if err != nil {
			fatal("Sign error", err)
		}
	}
	fmt.Printf("  Sign:     %v (avg)\n", total/time.Duration(iterations))

	total = 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		valid := sign.Verify(&sk.PublicKey, msg, sig)
		total += time.Since(start)
		if !valid {
			fmt.Fprintf(os.Stderr, "Verify failed\n")
			os.Exit(1)
		}
	}
	fmt.Printf("  Verify:   %v (avg)\n", total/time.Duration(iterations))

	fmt.Println()
	fmt.Println("Benchmark complete!")
}

// ============================================================================
// Utility Functions
// ============================================================================

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		SecurityLevel: elgamal.EG1024,
		OutputFormat:  FormatBase64,
		Workers:       -1,
	}

	level := getArg(args, "--level", "-l")
	switch strings.ToUpper(level) {
	case "TOY", "EG-TOY", "EG_TOY":
		config.SecurityLevel = elgamal.EGToy
	case "512", "EG-512", "EG_512":
		config.SecurityLevel = elgamal.EG512
	case "1024", "EG-1024", "EG_1024":
		config.SecurityLevel = elgamal.EG1024
	case "2048", "EG-2048", "EG_2048":
		config.SecurityLevel = elgamal.EG2048
	case "":
		// No level specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid security level '%s'. Must be one of: toy, 512, 1024, 2048\n", level)
		os.Exit(1)
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "hex":
		config.OutputFormat = FormatHex
	case "base64":
		config.OutputFormat = FormatBase64
	case "":
		// No format specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: hex, base64\n", format)
		os.Exit(1)
	}

	if w := getArg(args, "--workers", "-w"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "Error: invalid worker count '%s'\n", w)
			os.Exit(1)
		}
		config.Workers = n
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.InputFile = getArg(args, "--input", "-i")
	config.DBPath = getArg(args, "--db", "")
	config.Verbose = hasFlag(args, "--verbose", "-v")
	config.Timing = hasFlag(args, "--timing", "-t")

	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// readMessage takes the message from --message, --input or stdin, in that order.
func readMessage(args []string, config CLIConfig) []byte {
	if message := getArg(args, "--message", "-m"); message != "" {
		return []byte(message)
	}
	if config.InputFile != "" {
		data, err := readFileLimited(config.InputFile)
		if err != nil {
			fatal("Error reading input file", err)
		}
		return data
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, MaxInputFileSize))
	if err != nil {
		fatal("Error reading from stdin", err)
	}
	return data
}

func encodeBytes(data []byte, format OutputFormat) string {
	switch format {
	case FormatHex:
		return hex.EncodeToString(data)
	default:
		return base64.StdEncoding.EncodeToString(data)
	}
}

func decodeString(s string) ([]byte, error) {
	// Hex first: hex output is often valid base64, random base64 is almost never valid hex
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("unable to decode string")
}

func readFileLimited(filename string) ([]byte, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxInputFileSize {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), MaxInputFileSize)
	}
	return os.ReadFile(filename)
}

func loadPublicKey(filename string) *elgamal.PublicKey {
	data, err := loadKeyFromFile(filename, "public_key")
	if err != nil {
		fatal("Error loading public key", err)
	}
	pk, err := keys.DeserializePublicKey(data)
	if err != nil {
		fatal("Error deserializing public key", err)
	}
	return pk
}

func loadPrivateKey(filename string) *elgamal.PrivateKey {
	data, err := loadKeyFromFile(filename, "private_key")
	if err != nil {
		fatal("Error loading private key", err)
	}
	sk, err := keys.DeserializePrivateKey(data)
	if err != nil {
		fatal("Error deserializing private key", err)
	}
	return sk
}

// loadField returns a string field of a JSON file, or "" when absent.
func loadField(filename, field string) string {
	data, err := readFileLimited(filename)
	if err != nil {
		return ""
	}
	var jsonData map[string]interface{}
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return ""
	}
	s, _ := jsonData[field].(string)
	return s
}

func loadKeyFromFile(filename, keyField string) ([]byte, error) {
	data, err := readFileLimited(filename)
	if err != nil {
		return nil, err
	}

	var jsonData map[string]interface{}
	if err := json.Unmarshal(data, &jsonData); err == nil {
		fieldMappings := map[string][]string{
			"public_key":  {"public_key", "publicKey", "pk"},
			"private_key": {"private_key", "privateKey", "sk", "secret_key"},
			"ciphertext":  {"ciphertext", "ct", "encrypted"},
			"signature":   {"signature", "sig"},
		}
		fields, ok := fieldMappings[keyField]
		if !ok {
			fields = []string{keyField}
		}
		for _, field := range fields {
			if val, ok := jsonData[field]; ok {
				if strVal, ok := val.(string); ok {
					return decodeString(strVal)
				}
			}
		}
		return nil, fmt.Errorf("no %s field in %s", keyField, filename)
	}

	// Try raw encoding
	decoded, err := decodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to parse file format")
	}
	return decoded, nil
}

func openStore(path string) *store.Store {
	s, err := store.Open(context.Background(), path)
	if err != nil {
		fatal("Error opening key store", err)
	}
	return s
}

func writeJSON(v interface{}, filename string) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("Error marshaling output", err)
	}
	writeOutput(output, filename)
}

func writeOutput(data []byte, filename string) {
	if filename == "" {
		fmt.Println(string(data))
		return
	}
	// 0600: output may hold private keys
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		fatal("Error creating output file", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		fatal("Error writing output file", err)
	}
	if err := os.Chmod(filename, 0600); err != nil {
		fatal("Error setting file permissions", err)
	}
}
