// Command report generates and manages research reports from the terminal.
//
// Usage:
//
//	report generate --file paper.pdf --question "What changed?"
//	report list
//	report show <id>
//	report delete <id>
//	report prompts
package main

import "deep-research/cmd/report/cmd"

var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
