// vcstatus trains and serves the venture outcome classifier.
//
// Usage:
//
//	vcstatus train [--source=<path|url>]
//	vcstatus predict [--funding-total-usd=N] [--funding-rounds=N] [--funding-duration-days=N] [--is-in-us=0|1]
//	vcstatus predict --json='{"funding_total_usd": 500000}'
//	vcstatus serve [--port=8080]
//	vcstatus artifacts
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
