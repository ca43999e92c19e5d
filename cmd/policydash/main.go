// policydash evaluates policy-enforcement decision logs against release gates.
//
// Usage:
//
//	policydash summary  [filter flags] [--json]
//	policydash gates    [filter flags] [--strict] [--json]
//	policydash export   [filter flags] [-o file.csv]
//	policydash import   <records.json|records.csv>
//	policydash config   show|set|fields|load|fetch|history|rollback
//	policydash audit    [--last N]
//	policydash replay   <fixture-dir>
//	policydash serve    [--addr host:port]
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
