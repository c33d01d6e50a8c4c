package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// Ordinal returns argument i as a zero-based index parsed from the one-based
// number the player typed.
//
// Postcondition: Returns an error if the argument is missing, not an integer, or < 1.
func (p ParseResult) Ordinal(i int) (int, error) {
	if i >= len(p.Args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	n, err := strconv.Atoi(p.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", p.Args[i])
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not a valid choice", n)
	}
	return n - 1, nil
}
