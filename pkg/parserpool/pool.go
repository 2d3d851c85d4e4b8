// Package parserpool provides a pool of gnparser instances for concurrent
// parsing of category scientific names.
// This is a pure package - parsing is computation, not I/O.
package parserpool

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool provides a pool of gnparser instances for concurrent parsing.
// Herbarium sheets carry plant names, so the pool is configured for the
// botanical nomenclatural code.
type Pool interface {
	// Parse parses a scientific name string. It retrieves a parser
	// from the pool, parses the name, and returns the parser to the
	// pool. This method is safe for concurrent use.
	Parse(nameString string) (parsed.Parsed, error)

	// Canonical returns the simple canonical form of a name, or the
	// empty string when the name does not parse.
	Canonical(nameString string) string

	// Close shuts down the parser pool and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

// PoolImpl implements the Pool interface using gnparser.NewPool.
type PoolImpl struct {
	parsers  chan gnparser.GNparser
	poolSize int
}

// NewPool creates a new parser pool with the specified number of workers.
// If jobsNum is 0, it defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}

	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Botanical),
	)
	parsers := gnparser.NewPool(cfg, poolSize)

	return &PoolImpl{
		parsers:  parsers,
		poolSize: poolSize,
	}
}

// Parse parses a scientific name using a parser from the pool.
func (p *PoolImpl) Parse(nameString string) (parsed.Parsed, error) {
	// Get a parser from the pool (blocks if all parsers are busy)
	parser := <-p.parsers

	result := parser.ParseName(nameString)

	// Return the parser to the pool
	p.parsers <- parser

	return result, nil
}

// Canonical returns the simple canonical form of nameString.
func (p *PoolImpl) Canonical(nameString string) string {
	res, err := p.Parse(nameString)
	if err != nil || !res.Parsed || res.Canonical == nil {
		return ""
	}
	return res.Canonical.Simple
}

// Close shuts down the parser pool and releases resources.
// It closes the channel and drains any remaining parsers.
func (p *PoolImpl) Close() {
	if p.parsers != nil {
		close(p.parsers)
		// Drain the channel
		for range p.parsers {
		}
	}
}
