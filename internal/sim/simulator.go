// Package sim implements the ideal statevector quantum simulator described
// in spec §4.4: an amplitude vector over the computational basis, qubit
// allocation, gate application, deterministic reset, randomized measurement,
// and an OpenQASM 2.0 transcript.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/bloch-labs/bloch/internal/errors"
)

// Simulator owns the amplitude vector and per-qubit measured flags for one
// evaluator run. It is not safe for concurrent use; each evaluator owns one.
type Simulator struct {
	amps      []complex128
	measured  []bool
	rng       *rand.Rand
	transcript []string
	logEnabled bool
}

// New returns a zero-qubit simulator, amplitude vector {1} (the |⟩ of an
// empty register), seeded from a fresh random source.
func New() *Simulator {
	return &Simulator{
		amps:       []complex128{1},
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logEnabled: true,
	}
}

// NewSeeded returns a simulator whose measurement RNG is deterministic,
// for reproducible tests and seeded runs (interp.WithSeed).
func NewSeeded(seed uint64) *Simulator {
	s := New()
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return s
}

// SetTranscriptEnabled toggles QASM logging. Register-size lines are always
// emitted by QASM() regardless of this setting.
func (s *Simulator) SetTranscriptEnabled(enabled bool) {
	s.logEnabled = enabled
}

// NumQubits returns the number of allocated qubits.
func (s *Simulator) NumQubits() int {
	return len(s.measured)
}

// IsMeasured reports whether qubit q has been measured since allocation or
// its last reset. q must be a valid index.
func (s *Simulator) IsMeasured(q int) bool {
	return s.measured[q]
}

// AllocateQubit doubles the amplitude vector, keeping existing amplitudes in
// the |...0> subspace and zeroing the |...1> subspace, per spec §4.4.
func (s *Simulator) AllocateQubit() int {
	old := s.amps
	next := make([]complex128, len(old)*2)
	copy(next, old)
	s.amps = next
	s.measured = append(s.measured, false)
	return len(s.measured) - 1
}

func (s *Simulator) checkQubit(q int) error {
	if q < 0 || q >= len(s.measured) {
		return errors.Runtimef(errors.Position{}, "qubit index %d is out of range", q)
	}
	if s.measured[q] {
		return errors.Runtimef(errors.Position{}, "qubit %d has already been measured", q)
	}
	return nil
}

// apply1 applies a 2x2 unitary to qubit q by iterating the amplitude vector
// in blocks of 2*step, step = 2^q, pairing indices that differ only at bit q.
func (s *Simulator) apply1(q int, m [2][2]complex128) {
	step := 1 << q
	for base := 0; base < len(s.amps); base += 2 * step {
		for i := base; i < base+step; i++ {
			j := i + step
			a0, a1 := s.amps[i], s.amps[j]
			s.amps[i] = m[0][0]*a0 + m[0][1]*a1
			s.amps[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

var (
	hMatrix = [2][2]complex128{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	xMatrix = [2][2]complex128{{0, 1}, {1, 0}}
	yMatrix = [2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}
	zMatrix = [2][2]complex128{{1, 0}, {0, -1}}
)

func rxMatrix(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return [2][2]complex128{{c, s}, {s, c}}
}

func ryMatrix(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{{c, -s}, {s, c}}
}

func rzMatrix(theta float64) [2][2]complex128 {
	return [2][2]complex128{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// H applies the Hadamard gate to qubit q.
func (s *Simulator) H(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, hMatrix)
	s.log("h q[%d];", q)
	return nil
}

// X applies the Pauli-X (bit flip) gate to qubit q.
func (s *Simulator) X(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, xMatrix)
	s.log("x q[%d];", q)
	return nil
}

// Y applies the Pauli-Y gate to qubit q.
func (s *Simulator) Y(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, yMatrix)
	s.log("y q[%d];", q)
	return nil
}

// Z applies the Pauli-Z (phase flip) gate to qubit q.
func (s *Simulator) Z(q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, zMatrix)
	s.log("z q[%d];", q)
	return nil
}

// RX applies an X-axis rotation of theta radians to qubit q.
func (s *Simulator) RX(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, rxMatrix(theta))
	s.log("rx(%s) q[%d];", formatAngle(theta), q)
	return nil
}

// RY applies a Y-axis rotation of theta radians to qubit q.
func (s *Simulator) RY(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, ryMatrix(theta))
	s.log("ry(%s) q[%d];", formatAngle(theta), q)
	return nil
}

// RZ applies a Z-axis rotation of theta radians to qubit q.
func (s *Simulator) RZ(q int, theta float64) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	s.apply1(q, rzMatrix(theta))
	s.log("rz(%s) q[%d];", formatAngle(theta), q)
	return nil
}

// CX applies the controlled-X gate: swaps amplitudes at index pairs where
// the control bit is 1 and the target bit differs.
func (s *Simulator) CX(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	cMask := 1 << control
	tMask := 1 << target
	for i := range s.amps {
		if i&cMask == 0 {
			continue
		}
		if i&tMask != 0 {
			continue // only swap the i (target=0) half of each pair
		}
		j := i | tMask
		s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
	}
	s.log("cx q[%d],q[%d];", control, target)
	return nil
}

// Reset computes the norm in the |q=0> subspace; if zero, deterministically
// moves the |q=1> amplitude into |q=0> (no randomization), otherwise zeros
// the |q=1> subspace and renormalizes |q=0>. Clears the measured flag.
func (s *Simulator) Reset(q int) error {
	if q < 0 || q >= len(s.measured) {
		return errors.Runtimef(errors.Position{}, "qubit index %d is out of range", q)
	}
	mask := 1 << q
	var norm0 float64
	for i, a := range s.amps {
		if i&mask == 0 {
			norm0 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	if norm0 == 0 {
		for i := range s.amps {
			if i&mask == 0 {
				s.amps[i] = s.amps[i|mask]
				s.amps[i|mask] = 0
			}
		}
	} else {
		scale := complex(1/math.Sqrt(norm0), 0)
		for i := range s.amps {
			if i&mask == 0 {
				s.amps[i] *= scale
			} else {
				s.amps[i] = 0
			}
		}
	}
	s.measured[q] = false
	s.log("reset q[%d];", q)
	return nil
}

// Measure draws the outcome for qubit q, collapses the state, renormalizes,
// and marks q measured. c is the classical register index recorded in the
// transcript (by convention, equal to q).
func (s *Simulator) Measure(q, c int) (int, error) {
	if err := s.checkQubit(q); err != nil {
		return 0, err
	}
	mask := 1 << q
	var p1 float64
	for i, a := range s.amps {
		if i&mask != 0 {
			p1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	sample := s.rng.Float64()
	outcome := 0
	if sample < p1 {
		outcome = 1
	}
	var keepMask int
	if outcome == 1 {
		keepMask = mask
	}
	var norm float64
	for i, a := range s.amps {
		if i&mask == keepMask {
			norm += real(a)*real(a) + imag(a)*imag(a)
		} else {
			s.amps[i] = 0
		}
	}
	if norm > 0 {
		scale := complex(1/math.Sqrt(norm), 0)
		for i := range s.amps {
			if i&mask == keepMask {
				s.amps[i] *= scale
			}
		}
	}
	s.measured[q] = true
	s.log("measure q[%d] -> c[%d];", q, c)
	return outcome, nil
}

func (s *Simulator) log(format string, args ...any) {
	if !s.logEnabled {
		return
	}
	s.transcript = append(s.transcript, fmt.Sprintf(format, args...))
}

// QASM renders the full OpenQASM 2.0 transcript: header, register
// declarations sized to the allocated qubit count (even when logging is
// disabled), and the recorded operation list.
func (s *Simulator) QASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\ninclude \"qelib1.inc\";\n")
	n := len(s.measured)
	b.WriteString("qreg q[" + strconv.Itoa(n) + "];\n")
	b.WriteString("creg c[" + strconv.Itoa(n) + "];\n")
	for _, line := range s.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Amplitudes returns a copy of the current amplitude vector, for tests.
func (s *Simulator) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

func formatAngle(theta float64) string {
	return strconv.FormatFloat(theta, 'g', -1, 64)
}
