package svm

// Kernel names.
const (
	KernelRBF    = "rbf"
	KernelLinear = "linear"
)

// Gamma modes for the RBF kernel.
const (
	GammaScale = "scale"
	GammaAuto  = "auto"
)

// defaultMaxIter is the lower bound of the iteration cap used when maxIter is -1.
const defaultMaxIter = 10_000_000

// SVROption は SVR の設定オプション
type SVROption func(*SVR)

// WithC は正則化パラメータ C を設定する (デフォルト: 1.0)
func WithC(c float64) SVROption {
	return func(s *SVR) { s.c = c }
}

// WithEpsilon は epsilon-tube の幅を設定する (デフォルト: 0.1)
func WithEpsilon(eps float64) SVROption {
	return func(s *SVR) { s.epsilon = eps }
}

// WithGamma は RBF カーネルの gamma を明示的に設定する
func WithGamma(gamma float64) SVROption {
	return func(s *SVR) {
		s.gammaMode = ""
		s.gamma = gamma
	}
}

// WithGammaMode は gamma の決め方を "scale" または "auto" で設定する (デフォルト: "scale")
func WithGammaMode(mode string) SVROption {
	return func(s *SVR) { s.gammaMode = mode }
}

// WithKernel はカーネルを "rbf" または "linear" で設定する (デフォルト: "rbf")
func WithKernel(name string) SVROption {
	return func(s *SVR) { s.kernelName = name }
}

// WithTol は停止条件の許容誤差を設定する (デフォルト: 1e-3)
func WithTol(tol float64) SVROption {
	return func(s *SVR) { s.tol = tol }
}

// WithMaxIter は SMO の最大反復回数を設定する。-1 は上限 max(1e7, 100*n_samples)
func WithMaxIter(n int) SVROption {
	return func(s *SVR) { s.maxIter = n }
}
