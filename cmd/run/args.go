package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/hostbridge/bridge"
)

// parseArgs splits a comma-separated argument list. Empty input means no
// arguments.
func parseArgs(s string) []any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = parseArg(strings.TrimSpace(p))
	}
	return args
}

// parseArg converts one literal: nil, true, false, integers, floats,
// quoted strings, and bare words as strings.
func parseArg(s string) any {
	switch s {
	case "nil", "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if uq, err := strconv.Unquote(s); err == nil {
		return uq
	}
	return s
}

// formatValue renders a decoded bridge value.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case *bridge.Proxy:
		return v.String()
	}
	return fmt.Sprint(v)
}
