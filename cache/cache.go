// Package cache provides cache and TLB statistics models. A Sim tracks
// tag and replacement state with Akita cache components and counts hits,
// misses, and evictions; it carries no data payload, so it observes an
// access stream without serving it.
package cache

import (
	"fmt"
	"io"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds the geometry of one statistics model.
type Config struct {
	// Name labels the model in printed statistics.
	Name string
	// Size in bytes.
	Size int
	// Associativity (number of ways).
	Associativity int
	// BlockSize in bytes (cache line or page size).
	BlockSize int
}

// DefaultICacheConfig returns the default instruction-cache geometry:
// 16KB, 2-way, 64B lines.
func DefaultICacheConfig() Config {
	return Config{
		Name:          "icache",
		Size:          16 * 1024,
		Associativity: 2,
		BlockSize:     64,
	}
}

// DefaultDCacheConfig returns the default data-cache geometry:
// 16KB, 4-way, 64B lines.
func DefaultDCacheConfig() Config {
	return Config{
		Name:          "dcache",
		Size:          16 * 1024,
		Associativity: 4,
		BlockSize:     64,
	}
}

// TLBConfig returns the TLB geometry: 8 entries over 4KB pages, modeled
// as a single fully associative set.
func TLBConfig(name string) Config {
	return Config{
		Name:          name,
		Size:          8 * 4096,
		Associativity: 8,
		BlockSize:     4096,
	}
}

// Statistics holds the counters a Sim accumulates.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Sim is one cache or TLB statistics model.
type Sim struct {
	config Config

	// Akita cache directory for tag and LRU state.
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a statistics model with the given geometry.
func New(config Config) *Sim {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Sim{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the model's geometry.
func (s *Sim) Config() Config {
	return s.config
}

// Stats returns the accumulated counters.
func (s *Sim) Stats() Statistics {
	return s.stats
}

// Access observes one read or write and returns whether it hit. A miss
// installs the block, evicting the LRU way of a full set.
func (s *Sim) Access(addr uint64, write bool) bool {
	if write {
		s.stats.Writes++
	} else {
		s.stats.Reads++
	}

	blockAddr := addr / uint64(s.config.BlockSize) * uint64(s.config.BlockSize)

	block := s.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		s.stats.Hits++
		s.directory.Visit(block)
		return true
	}

	s.stats.Misses++

	victim := s.directory.FindVictim(blockAddr)
	if victim == nil {
		return false
	}
	if victim.IsValid {
		s.stats.Evictions++
	}
	victim.Tag = blockAddr
	victim.IsValid = true
	s.directory.Visit(victim)

	return false
}

// Flush invalidates every entry without touching the counters. The MMU
// calls this on TLB models when translations are discarded.
func (s *Sim) Flush() {
	for _, set := range s.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
		}
	}
}

// Reset invalidates every entry and clears the counters.
func (s *Sim) Reset() {
	s.directory.Reset()
	s.stats = Statistics{}
}

// PrintStats writes the accumulated counters in the fixed report format.
func (s *Sim) PrintStats(w io.Writer) {
	accesses := s.stats.Reads + s.stats.Writes
	missRate := 0.0
	if accesses > 0 {
		missRate = 100.0 * float64(s.stats.Misses) / float64(accesses)
	}

	fmt.Fprintf(w, "%s stats:\n", s.config.Name)
	fmt.Fprintf(w, "  accesses:  %d\n", accesses)
	fmt.Fprintf(w, "  hits:      %d\n", s.stats.Hits)
	fmt.Fprintf(w, "  misses:    %d\n", s.stats.Misses)
	fmt.Fprintf(w, "  evictions: %d\n", s.stats.Evictions)
	fmt.Fprintf(w, "  miss rate: %.2f%%\n", missRate)
}
