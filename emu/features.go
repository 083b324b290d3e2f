package emu

import (
	"encoding/json"
	"fmt"
	"os"
)

// Features describes which optional architecture extensions the build
// carries. A disabled feature forces the corresponding status-register
// enable bit to zero on every write, so software can neither observe nor
// enable it. The zero value disables everything; use DefaultFeatures for
// a fully equipped hart.
type Features struct {
	// RV64 enables 64-bit user and supervisor register width (SX/UX).
	RV64 bool `json:"rv64"`

	// FPU enables the floating-point unit (EF).
	FPU bool `json:"fpu"`

	// Compressed enables the compressed instruction encoding (EC).
	Compressed bool `json:"compressed"`

	// Vector enables the vector-thread unit (EV).
	Vector bool `json:"vector"`
}

// DefaultFeatures returns a Features value with every extension enabled.
func DefaultFeatures() Features {
	return Features{
		RV64:       true,
		FPU:        true,
		Compressed: true,
		Vector:     true,
	}
}

// LoadFeatures reads a Features value from a JSON file. Fields absent
// from the file stay disabled.
func LoadFeatures(path string) (Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Features{}, fmt.Errorf("failed to read features config: %w", err)
	}

	var f Features
	if err := json.Unmarshal(data, &f); err != nil {
		return Features{}, fmt.Errorf("failed to parse features config: %w", err)
	}

	return f, nil
}
