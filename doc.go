// Package salesml predicts daily sales with support vector regression and
// suggests items to sell alongside the worst seller on a set of bills.
//
// The module is organized around two programs exposed by the salesml CLI:
//
//   - predict: loads day,visitors,viewed,holiday,sold records, splits them into
//     train and test sets, standardizes the features, fits an RBF epsilon-SVR and
//     predicts sold for a future day.
//   - suggest: totals item quantities across bills, finds the best and worst
//     sellers and picks the item most often bought together with the worst one.
//
// # Installation
//
//	go install github.com/YuminosukeSato/salesml/cmd/salesml@latest
//
// # Quick Start
//
//	salesml predict --input-path data/Data1.csv
//	salesml predict --query 9700,1017,469,0 --plot-out svr.png -o json
//	salesml suggest --sales-path data/DummyBills.csv --chart-out sales.html
//
// The same pipeline is available as a library:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/salesml/pipeline"
//	)
//
//	func main() {
//	    opt := pipeline.NewDefaultOptions()
//	    opt.InputPath = "data/Data1.csv"
//
//	    p, err := pipeline.New(opt)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    res, err := p.Run()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Prediction)
//	}
//
// # Packages
//
//   - pipeline: load, split, scale, fit and predict stages of the SVR pipeline
//   - sales: bill totals, best and worst sellers and the co-purchase suggestion
//   - sklearn/svm: epsilon-SVR solved with SMO
//   - sklearn/model_selection: seeded train/test split and k-fold cross-validation
//   - preprocessing: StandardScaler
//   - metrics: MSE, RMSE, MAE and R²
//   - dataset: numeric CSV loading (plain or .xz)
//   - report: PNG plots, HTML bar charts, text and JSON output
//   - core/model: estimator interfaces and weight persistence
//   - pkg/errors, pkg/log: stage-aware errors and structured logging
//
// # Configuration
//
// Settings come from command-line flags, SALESML_* environment variables,
// ~/.salesml/config.yaml and built-in defaults, in that order of precedence.
package salesml
