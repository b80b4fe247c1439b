// Command loancalc runs the origination engine locally: simulations,
// eligibility checks and full payment schedules without any backing
// services.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
