/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"os"

	"github.com/suparena/tablequery/cli"
	_ "github.com/suparena/tablequery/tablestore/aztable"
	_ "github.com/suparena/tablequery/tablestore/ddb"
	_ "github.com/suparena/tablequery/tablestore/mock"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
