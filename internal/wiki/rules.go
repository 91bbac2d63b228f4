package wiki

import _ "embed"

// rulesText is the syntax cheat-sheet handed to agents that review or emit
// wiki markup.
//
//go:embed rules.txt
var rulesText string

// Rules returns the wiki syntax rules as prompt-ready text.
func Rules() string {
	return rulesText
}
