package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	vybiumevmstark "github.com/vybium/vybium-evm-stark/pkg/vybium-evm-stark"
)

// OperationInput is one 256-bit operation request. Operands are decimal
// or 0x-prefixed hex strings.
type OperationInput struct {
	Op    string `json:"op"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MemoryAccessInput is one memory access. Reads leave Value empty.
type MemoryAccessInput struct {
	Kind    string `json:"kind"` // "read" or "write"
	Address uint64 `json:"address"`
	Value   uint64 `json:"value,omitempty"`
}

// ProgramInput is the JSON document read from stdin
type ProgramInput struct {
	Operations []OperationInput    `json:"operations"`
	Memory     []MemoryAccessInput `json:"memory,omitempty"`
}

// ProofOutput is the JSON document written to stdout
type ProofOutput struct {
	PaddedHeight  int      `json:"padded_height"`
	NumLookups    int      `json:"num_lookups"`
	NumZColumns   int      `json:"num_z_columns"`
	Results       []string `json:"results"`
	TranscriptTag string   `json:"transcript_tag"`
}

func main() {
	reader := bufio.NewReader(os.Stdin)
	var input ProgramInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		fatal(fmt.Sprintf("Failed to parse program: %v", err))
	}
	if len(input.Operations) == 0 {
		fatal("Program contains no operations")
	}

	et := vybiumevmstark.NewExecutionTrace()

	logStderr(fmt.Sprintf("Executing %d operations...", len(input.Operations)))
	results := make([]string, 0, len(input.Operations))
	for i, op := range input.Operations {
		selector, err := parseOp(op.Op)
		if err != nil {
			fatal(fmt.Sprintf("Operation %d: %v", i, err))
		}
		left, err := parseU256(op.Left)
		if err != nil {
			fatal(fmt.Sprintf("Operation %d left operand: %v", i, err))
		}
		right, err := parseU256(op.Right)
		if err != nil {
			fatal(fmt.Sprintf("Operation %d right operand: %v", i, err))
		}

		result, err := et.ExecuteOperation(selector, left, right)
		if err != nil {
			fatal(fmt.Sprintf("Operation %d failed: %v", i, err))
		}
		results = append(results, result.Hex())
	}

	for i, access := range input.Memory {
		switch access.Kind {
		case "write":
			if err := et.Memory.Write(access.Address, access.Value); err != nil {
				fatal(fmt.Sprintf("Memory access %d failed: %v", i, err))
			}
		case "read":
			if _, err := et.Memory.Read(access.Address); err != nil {
				fatal(fmt.Sprintf("Memory access %d failed: %v", i, err))
			}
		default:
			fatal(fmt.Sprintf("Memory access %d: unknown kind %q", i, access.Kind))
		}
	}

	logStderr("Creating prover...")
	prover, err := vybiumevmstark.NewProver(vybiumevmstark.DefaultConfig())
	if err != nil {
		fatal(fmt.Sprintf("Failed to create prover: %v", err))
	}

	logStderr("Proving trace...")
	proof, err := prover.ProveTrace(et)
	if err != nil {
		fatal(fmt.Sprintf("Proof generation failed: %v", err))
	}

	verifier, err := vybiumevmstark.NewVerifier(vybiumevmstark.DefaultConfig())
	if err != nil {
		fatal(fmt.Sprintf("Failed to create verifier: %v", err))
	}
	if err := verifier.VerifyTrace(proof); err != nil {
		fatal(fmt.Sprintf("Verification failed: %v", err))
	}
	logStderr("Proof verified")

	numZ := 0
	for _, zs := range proof.CtlData.ZsPerTable {
		numZ += len(zs)
	}
	output := ProofOutput{
		PaddedHeight:  proof.PaddedHeight,
		NumLookups:    len(proof.Ctls),
		NumZColumns:   numZ,
		Results:       results,
		TranscriptTag: transcriptTag(proof),
	}
	if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
		fatal(fmt.Sprintf("Failed to serialize output: %v", err))
	}
}

func parseOp(name string) (int, error) {
	switch name {
	case "Add":
		return vybiumevmstark.OpAdd, nil
	case "Sub":
		return vybiumevmstark.OpSub, nil
	case "Lt":
		return vybiumevmstark.OpLt, nil
	case "Gt":
		return vybiumevmstark.OpGt, nil
	case "Mul":
		return vybiumevmstark.OpMul, nil
	default:
		return 0, fmt.Errorf("unknown operation: %s", name)
	}
}

func parseU256(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty operand")
	}
	v, err := uint256.FromDecimal(s)
	if err == nil {
		return v, nil
	}
	return uint256.FromHex(s)
}

// transcriptTag derives a short identifier from the drawn challenges so
// runs with different randomness are distinguishable in logs
func transcriptTag(proof *vybiumevmstark.TraceProof) string {
	if len(proof.ChallengeSet.Challenges) == 0 {
		return ""
	}
	first := proof.ChallengeSet.Challenges[0]
	var buf [16]byte
	for i, v := range []uint64{first.Beta.Value(), first.Gamma.Value()} {
		for j := 0; j < 8; j++ {
			buf[8*i+j] = byte(v >> (56 - 8*j))
		}
	}
	return hex.EncodeToString(buf[:8])
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-evm-stark:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
