package simulator

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// statevector is a dense complex amplitude vector over n qubits. Qubit i
// occupies bit i of the basis-state index.
type statevector struct {
	n    int
	amps []complex128
}

func newStatevector(n int) *statevector {
	sv := &statevector{n: n, amps: make([]complex128, 1<<n)}
	sv.amps[0] = 1
	return sv
}

// applySingle applies a 2x2 unitary m to qubit q.
func (sv *statevector) applySingle(q int, m [2][2]complex128) {
	bit := 1 << q
	for i := range sv.amps {
		if i&bit != 0 {
			continue
		}
		a0, a1 := sv.amps[i], sv.amps[i|bit]
		sv.amps[i] = m[0][0]*a0 + m[0][1]*a1
		sv.amps[i|bit] = m[1][0]*a0 + m[1][1]*a1
	}
}

// applyCX applies a controlled-X with the given control and target qubits.
func (sv *statevector) applyCX(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range sv.amps {
		if i&cbit != 0 && i&tbit == 0 {
			sv.amps[i], sv.amps[i|tbit] = sv.amps[i|tbit], sv.amps[i]
		}
	}
}

func (sv *statevector) applyX(q int) {
	sv.applySingle(q, [2][2]complex128{{0, 1}, {1, 0}})
}

func (sv *statevector) applySX(q int) {
	// sqrt(X) = 1/2 [[1+i, 1-i], [1-i, 1+i]]
	p, m := complex(0.5, 0.5), complex(0.5, -0.5)
	sv.applySingle(q, [2][2]complex128{{p, m}, {m, p}})
}

func (sv *statevector) applyRZ(q int, angle float64) {
	sv.applySingle(q, [2][2]complex128{
		{cmplx.Exp(complex(0, -angle/2)), 0},
		{0, cmplx.Exp(complex(0, angle/2))},
	})
}

// sample draws one basis-state index from the measurement distribution.
func (sv *statevector) sample(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, a := range sv.amps {
		acc += real(a)*real(a) + imag(a)*imag(a)
		if r < acc {
			return i
		}
	}
	// Floating-point tails can leave r marginally above the accumulated
	// probability mass; the last basis state absorbs it.
	return len(sv.amps) - 1
}

// norm returns the total probability mass, used to detect numeric drift.
func (sv *statevector) norm() float64 {
	acc := 0.0
	for _, a := range sv.amps {
		acc += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(acc)
}
