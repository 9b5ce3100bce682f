package svm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// tau replaces non-positive curvature in the two-variable subproblem.
const tau = 1e-12

// smoResult is the solution of the epsilon-SVR dual.
type smoResult struct {
	// coef[i] = alpha[i] - alpha*[i], one per training sample
	coef       []float64
	rho        float64
	iterations int
	converged  bool
}

// smoSolver solves the epsilon-SVR dual
//
//	min 1/2 a'Qa + p'a  s.t.  s'a = 0, 0 <= a_t <= C
//
// over 2l variables, using sequential minimal optimisation with second order
// working set selection (Fan, Chen and Lin 2005). Variable t < l is alpha_t
// with sign +1, variable t >= l is alpha*_{t-l} with sign -1, and
// Q_ts = s_t s_s K(t mod l, s mod l).
type smoSolver struct {
	l       int
	K       *mat.Dense
	c       float64
	tol     float64
	maxIter int

	alpha []float64
	grad  []float64
	sign  []float64
	qd    []float64
}

func newSMOSolver(K *mat.Dense, y []float64, c, epsilon, tol float64, maxIter int) *smoSolver {
	l := len(y)
	s := &smoSolver{
		l:       l,
		K:       K,
		c:       c,
		tol:     tol,
		maxIter: maxIter,
		alpha:   make([]float64, 2*l),
		grad:    make([]float64, 2*l),
		sign:    make([]float64, 2*l),
		qd:      make([]float64, 2*l),
	}
	for i := 0; i < l; i++ {
		// alpha = 0, so the gradient starts at p
		s.grad[i] = epsilon - y[i]
		s.grad[i+l] = epsilon + y[i]
		s.sign[i] = 1
		s.sign[i+l] = -1
		s.qd[i] = K.At(i, i)
		s.qd[i+l] = s.qd[i]
	}
	return s
}

func (s *smoSolver) atUpper(t int) bool { return s.alpha[t] >= s.c }
func (s *smoSolver) atLower(t int) bool { return s.alpha[t] <= 0 }

// q returns Q_ts.
func (s *smoSolver) q(t, u int) float64 {
	return s.sign[t] * s.sign[u] * s.K.At(t%s.l, u%s.l)
}

// selectWorkingSet returns the maximal violating pair under second order
// selection, or ok=false once the KKT gap is within tol.
func (s *smoSolver) selectWorkingSet() (i, j int, ok bool) {
	n := 2 * s.l
	gmax := math.Inf(-1)
	i = -1
	for t := 0; t < n; t++ {
		if s.sign[t] > 0 {
			if !s.atUpper(t) && -s.grad[t] >= gmax {
				gmax = -s.grad[t]
				i = t
			}
		} else if !s.atLower(t) && s.grad[t] >= gmax {
			gmax = s.grad[t]
			i = t
		}
	}
	if i < 0 {
		return -1, -1, false
	}

	gmax2 := math.Inf(-1)
	j = -1
	objDiffMin := math.Inf(1)
	for t := 0; t < n; t++ {
		var gradDiff, quad float64
		if s.sign[t] > 0 {
			if s.atLower(t) {
				continue
			}
			if s.grad[t] >= gmax2 {
				gmax2 = s.grad[t]
			}
			gradDiff = gmax + s.grad[t]
			quad = s.qd[i] + s.qd[t] - 2*s.sign[i]*s.q(i, t)
		} else {
			if s.atUpper(t) {
				continue
			}
			if -s.grad[t] >= gmax2 {
				gmax2 = -s.grad[t]
			}
			gradDiff = gmax - s.grad[t]
			quad = s.qd[i] + s.qd[t] + 2*s.sign[i]*s.q(i, t)
		}
		if gradDiff <= 0 {
			continue
		}
		if quad <= 0 {
			quad = tau
		}
		if objDiff := -(gradDiff * gradDiff) / quad; objDiff <= objDiffMin {
			j = t
			objDiffMin = objDiff
		}
	}

	if gmax+gmax2 < s.tol || j < 0 {
		return -1, -1, false
	}
	return i, j, true
}

// update solves the two-variable subproblem for (i, j), clips to the box
// and updates the gradient.
func (s *smoSolver) update(i, j int) {
	c := s.c
	qij := s.q(i, j)
	oldI, oldJ := s.alpha[i], s.alpha[j]

	if s.sign[i] != s.sign[j] {
		quad := s.qd[i] + s.qd[j] + 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta
		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = -diff
		}
		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = c - diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j] = c
			s.alpha[i] = c + diff
		}
	} else {
		quad := s.qd[i] + s.qd[j] - 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta
		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = sum - c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j] = 0
			s.alpha[i] = sum
		}
		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j] = c
				s.alpha[i] = sum - c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = sum
		}
	}

	dI := s.alpha[i] - oldI
	dJ := s.alpha[j] - oldJ
	if dI == 0 && dJ == 0 {
		return
	}
	for t := range s.grad {
		s.grad[t] += s.q(i, t)*dI + s.q(j, t)*dJ
	}
}

// rho is the offset b of the decision function f(x) = sum coef K - rho:
// the mean of s_t G_t over free variables, or the midpoint of the feasible
// interval when no variable is free.
func (s *smoSolver) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	var sumFree float64
	nFree := 0
	for t := range s.alpha {
		yG := s.sign[t] * s.grad[t]
		switch {
		case s.atUpper(t):
			if s.sign[t] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case s.atLower(t):
			if s.sign[t] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}

func (s *smoSolver) solve() smoResult {
	res := smoResult{converged: true}
	for {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			break
		}
		if res.iterations >= s.maxIter {
			res.converged = false
			break
		}
		s.update(i, j)
		res.iterations++
	}

	res.rho = s.rho()
	res.coef = make([]float64, s.l)
	for i := 0; i < s.l; i++ {
		res.coef[i] = s.alpha[i] - s.alpha[i+s.l]
	}
	return res
}
