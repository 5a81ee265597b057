package utils

import (
	"fmt"
)

// Config represents the configuration for trace generation and the
// randomized arguments
type Config struct {
	// Security parameters
	NumChallenges int // Number of independent challenge draws per argument

	// Permutation argument parameters
	PermutationBatchSize int // Instances sharing one Z polynomial

	// Scalar multiplication parameters
	MsmWindowBits int // Window width of the multi-scalar multiplication
	NumWorkers    int // Worker count for parallel precomputation

	// Hash function
	HashFunction string // "sha256" or "sha3"
}

// DefaultConfig returns a configuration with 100-bit soundness defaults
func DefaultConfig() *Config {
	return &Config{
		NumChallenges:        2,
		PermutationBatchSize: 2,
		MsmWindowBits:        5,
		NumWorkers:           4,
		HashFunction:         "sha3",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.NumChallenges <= 0 {
		return fmt.Errorf("number of challenges must be positive")
	}

	if c.PermutationBatchSize <= 0 {
		return fmt.Errorf("permutation batch size must be positive")
	}

	if c.MsmWindowBits <= 0 || c.MsmWindowBits > 16 {
		return fmt.Errorf("msm window bits must be in [1, 16], got %d", c.MsmWindowBits)
	}

	if c.NumWorkers <= 0 {
		return fmt.Errorf("worker count must be positive")
	}

	if c.HashFunction != "sha256" && c.HashFunction != "sha3" {
		return fmt.Errorf("hash function must be 'sha256' or 'sha3', got '%s'", c.HashFunction)
	}

	return nil
}

// WithNumChallenges sets the number of challenge draws
func (c *Config) WithNumChallenges(n int) *Config {
	c.NumChallenges = n
	return c
}

// WithPermutationBatchSize sets the permutation batch size
func (c *Config) WithPermutationBatchSize(size int) *Config {
	c.PermutationBatchSize = size
	return c
}

// WithMsmWindowBits sets the multi-scalar multiplication window width
func (c *Config) WithMsmWindowBits(bits int) *Config {
	c.MsmWindowBits = bits
	return c
}

// WithNumWorkers sets the worker count
func (c *Config) WithNumWorkers(n int) *Config {
	c.NumWorkers = n
	return c
}

// WithHashFunction sets the hash function
func (c *Config) WithHashFunction(hashFunc string) *Config {
	c.HashFunction = hashFunc
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		NumChallenges:        c.NumChallenges,
		PermutationBatchSize: c.PermutationBatchSize,
		MsmWindowBits:        c.MsmWindowBits,
		NumWorkers:           c.NumWorkers,
		HashFunction:         c.HashFunction,
	}
}
