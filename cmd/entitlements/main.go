// Command entitlements is the operational CLI for the credit entitlement
// engine: it applies schema migrations, runs the monthly sweep manually
// (the recovery path when the scheduled trigger misfires) and inspects
// account balances.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
