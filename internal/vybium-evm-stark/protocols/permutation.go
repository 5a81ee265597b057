package protocols

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/utils"
)

// PermutationPair is a pair of lists of columns, lhs and rhs, that should
// be permutations of one another. In particular, there should exist some
// permutation pi such that for any i, trace[lhs[i]] = pi(trace[rhs[i]]),
// where trace denotes the trace in column-major form.
type PermutationPair struct {
	// Each entry contains two column indices, representing two columns
	// which should be permutations of one another
	ColumnPairs [][2]int
}

// SingletonPair builds a pair relating a single lhs column to a single
// rhs column
func SingletonPair(lhs, rhs int) PermutationPair {
	return PermutationPair{ColumnPairs: [][2]int{{lhs, rhs}}}
}

// PermutationChallenge is the randomness for a single instance of a
// permutation check protocol
type PermutationChallenge struct {
	// Beta combines multiple columns into one
	Beta field.Element
	// Gamma is the random offset added to the beta-reduced column values
	Gamma field.Element
}

// PermutationChallengeSet carries NumChallenges copies of a challenge to
// boost soundness
type PermutationChallengeSet struct {
	Challenges []PermutationChallenge
}

// PermutationInstance is a single instance of a permutation check protocol
type PermutationInstance struct {
	Pair      *PermutationPair
	Challenge PermutationChallenge
}

// GetPermutationChallenge draws one (beta, gamma) pair from the transcript.
// The draw order is fixed: beta first, then gamma. Reordering the draws
// changes the proof's soundness binding.
func GetPermutationChallenge(channel *utils.Channel) PermutationChallenge {
	beta := channel.ReceiveRandomFieldElement()
	gamma := channel.ReceiveRandomFieldElement()
	return PermutationChallenge{Beta: beta, Gamma: gamma}
}

// GetPermutationChallengeSet draws numChallenges independent challenges
func GetPermutationChallengeSet(channel *utils.Channel, numChallenges int) PermutationChallengeSet {
	challenges := make([]PermutationChallenge, numChallenges)
	for i := range challenges {
		challenges[i] = GetPermutationChallenge(channel)
	}
	return PermutationChallengeSet{Challenges: challenges}
}

// GetNPermutationChallengeSets draws numSets challenge sets
func GetNPermutationChallengeSets(channel *utils.Channel, numChallenges, numSets int) []PermutationChallengeSet {
	sets := make([]PermutationChallengeSet, numSets)
	for i := range sets {
		sets[i] = GetPermutationChallengeSet(channel, numChallenges)
	}
	return sets
}

// GetPermutationBatches lists the instances of the batch-permutation
// argument, where the same Z polynomial is used to check more than one
// permutation. Each permutation pair leads to numChallenges instances, so
// we start with the cartesian product of pairs and challenge indices, then
// chunk these instances based on the batch size.
func GetPermutationBatches(pairs []PermutationPair, challengeSets []PermutationChallengeSet, numChallenges, batchSize int) [][]PermutationInstance {
	var flat []struct {
		pair *PermutationPair
		chal int
	}
	for p := range pairs {
		for chal := 0; chal < numChallenges; chal++ {
			flat = append(flat, struct {
				pair *PermutationPair
				chal int
			}{&pairs[p], chal})
		}
	}

	var batches [][]PermutationInstance
	for start := 0; start < len(flat); start += batchSize {
		end := min(start+batchSize, len(flat))
		batch := make([]PermutationInstance, 0, end-start)
		for i, entry := range flat[start:end] {
			// The i-th member of a batch uses the i-th challenge set, so
			// instances sharing one Z polynomial get independent randomness.
			batch = append(batch, PermutationInstance{
				Pair:      entry.pair,
				Challenge: challengeSets[i].Challenges[entry.chal],
			})
		}
		batches = append(batches, batch)
	}
	return batches
}

// ComputePermutationZPolys computes all Z polynomials of the permutation
// argument over a column-major trace, along with each column's terminal
// grand product: the quotient product over every row, which is one
// exactly when the paired columns hold equal multisets. The batches are
// independent and are computed fork-join; each Z column itself is
// inherently sequential since row i depends on row i-1.
func ComputePermutationZPolys(pairs []PermutationPair, challengeSets []PermutationChallengeSet, numChallenges, batchSize int, trace [][]field.Element) ([][]field.Element, []field.Element, error) {
	batches := GetPermutationBatches(pairs, challengeSets, numChallenges, batchSize)
	results := make([][]field.Element, len(batches))
	grandProducts := make([]field.Element, len(batches))

	log := utils.Logger()
	log.Debug().Int("batches", len(batches)).Int("pairs", len(pairs)).Msg("computing permutation Z polynomials")

	var g errgroup.Group
	for b := range batches {
		g.Go(func() error {
			z, grandProduct, err := computePermutationZPoly(batches[b], trace)
			if err != nil {
				return fmt.Errorf("permutation batch %d: %w", b, err)
			}
			results[b] = z
			grandProducts[b] = grandProduct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, grandProducts, nil
}

// computePermutationZPoly computes a single Z polynomial, the running
// partial products of the reduced-lhs / reduced-rhs quotients with
// Z[0] = 1, and the grand product the running product closes on after
// the last row
func computePermutationZPoly(instances []PermutationInstance, trace [][]field.Element) ([]field.Element, field.Element, error) {
	if len(trace) == 0 || len(trace[0]) == 0 {
		return nil, field.Zero, fmt.Errorf("empty trace")
	}
	degree := len(trace[0])

	numerator := constantColumn(field.One, degree)
	denominator := constantColumn(field.One, degree)
	for _, instance := range instances {
		reducedLhs, reducedRhs := permutationReducedColumns(instance, trace, degree)
		for row := 0; row < degree; row++ {
			numerator[row] = numerator[row].Mul(reducedLhs[row])
			denominator[row] = denominator[row].Mul(reducedRhs[row])
		}
	}

	denominatorInverses, err := core.BatchInversion(denominator)
	if err != nil {
		return nil, field.Zero, fmt.Errorf("inverting reduced rhs products: %w", err)
	}

	partialProducts := make([]field.Element, degree)
	acc := field.One
	for row := 0; row < degree; row++ {
		partialProducts[row] = acc
		acc = acc.Mul(numerator[row].Mul(denominatorInverses[row]))
	}
	return partialProducts, acc, nil
}

// permutationReducedColumns computes the reduced column combination
// gamma + sum_i beta^i f_i(x) for both sides of a permutation pair
func permutationReducedColumns(instance PermutationInstance, trace [][]field.Element, degree int) ([]field.Element, []field.Element) {
	beta := instance.Challenge.Beta
	gamma := instance.Challenge.Gamma

	reducedLhs := constantColumn(gamma, degree)
	reducedRhs := constantColumn(gamma, degree)
	weight := field.One
	for _, pair := range instance.Pair.ColumnPairs {
		lhsCol := trace[pair[0]]
		rhsCol := trace[pair[1]]
		for row := 0; row < degree; row++ {
			reducedLhs[row] = reducedLhs[row].Add(lhsCol[row].Mul(weight))
			reducedRhs[row] = reducedRhs[row].Add(rhsCol[row].Mul(weight))
		}
		weight = weight.Mul(beta)
	}
	return reducedLhs, reducedRhs
}

func constantColumn(v field.Element, degree int) []field.Element {
	column := make([]field.Element, degree)
	for i := range column {
		column[i] = v
	}
	return column
}

// PermutationCheckVars holds the committed Z values at the local and next
// rows, plus the challenge sets the prover used
type PermutationCheckVars struct {
	LocalZs       []field.Element
	NextZs        []field.Element
	ChallengeSets []PermutationChallengeSet
}

// EvalPermutationChecks evaluates the local and transition constraints of
// the permutation argument: each Z is 1 at the first row, and
// Z(next) * prod(reduced rhs) = Z(local) * prod(reduced lhs) across rows.
func EvalPermutationChecks(pairs []PermutationPair, numChallenges, batchSize int, localValues []field.Element, vars PermutationCheckVars, consumer *ConstraintConsumer) error {
	batches := GetPermutationBatches(pairs, vars.ChallengeSets, numChallenges, batchSize)
	if len(vars.LocalZs) != len(batches) || len(vars.NextZs) != len(batches) {
		return fmt.Errorf("expected %d Z values, got %d local and %d next", len(batches), len(vars.LocalZs), len(vars.NextZs))
	}

	// Z(1) = 1
	for _, z := range vars.LocalZs {
		consumer.ConstraintFirstRow(z.Sub(field.One))
	}

	for i, instances := range batches {
		lhsProduct := field.One
		rhsProduct := field.One
		for _, instance := range instances {
			factor := NewReducingFactor(instance.Challenge.Beta)
			lhs := make([]field.Element, 0, len(instance.Pair.ColumnPairs))
			rhs := make([]field.Element, 0, len(instance.Pair.ColumnPairs))
			for _, pair := range instance.Pair.ColumnPairs {
				lhs = append(lhs, localValues[pair[0]])
				rhs = append(rhs, localValues[pair[1]])
			}
			lhsProduct = lhsProduct.Mul(factor.ReduceWithOffset(lhs, instance.Challenge.Gamma))
			rhsProduct = rhsProduct.Mul(factor.ReduceWithOffset(rhs, instance.Challenge.Gamma))
		}
		constraint := vars.NextZs[i].Mul(rhsProduct).Sub(vars.LocalZs[i].Mul(lhsProduct))
		consumer.Constraint(constraint)
	}
	return nil
}
