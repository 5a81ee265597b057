// Package vybiumevmstark provides the proving core of the Vybium EVM
// STARK: multi-limb 256-bit arithmetic constraints, the cross-table
// lookup and permutation arguments binding the execution tables
// together, and the secp256k1 multi-scalar multiplication engine used
// for ECDSA.
//
// # Quick Start
//
// Recording an execution and proving its cross-table consistency:
//
//	et := vybiumevmstark.NewExecutionTrace()
//	sum, err := et.ExecuteOperation(vybiumevmstark.OpAdd, uint256.NewInt(3), uint256.NewInt(5))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	prover, err := vybiumevmstark.NewProver(vybiumevmstark.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	proof, err := prover.ProveTrace(et)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	verifier, err := vybiumevmstark.NewVerifier(vybiumevmstark.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := verifier.VerifyTrace(proof); err != nil {
//		log.Fatal(err)
//	}
//
// # Curve Arithmetic
//
// Scalar multiplication uses the GLV endomorphism decomposition on top
// of a windowed multi-scalar multiplication:
//
//	result, err := vybiumevmstark.ScalarMul(&k, point)
//
// # Architecture
//
// The module uses a hybrid public/private layout:
//
// - pkg/vybium-evm-stark/: Public API (this package)
// - internal/vybium-evm-stark/: Private implementation (not importable)
//
// The public API provides stable interfaces for:
// - Execution trace recording across the CPU, arithmetic, memory and range-check tables
// - Cross-table lookup proving and verification
// - secp256k1 point arithmetic, batch summation and MSM
//
// Implementation details in internal/ can be refactored without breaking the public API.
//
// # References
//
// - STARK Paper: https://eprint.iacr.org/2018/046
//
// # License
//
// See LICENSE file in the repository root.
package vybiumevmstark
