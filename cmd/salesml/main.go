// Command salesml predicts future sales with an RBF support vector regression
// and suggests items to sell alongside the worst seller.
//
//	salesml predict --input-path data/Data1.csv
//	salesml suggest --sales-path data/DummyBills.csv
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
