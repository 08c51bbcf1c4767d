package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ucp-agent/internal/tools"
)

// aliases are short names accepted by the shell.
var aliases = map[string]string{
	"search":   tools.ActionSearchCatalog,
	"add":      tools.ActionAddToCheckout,
	"remove":   tools.ActionRemoveFromCheckout,
	"update":   tools.ActionUpdateCheckout,
	"cart":     tools.ActionGetCheckout,
	"details":  tools.ActionUpdateCustomerDetails,
	"pay":      tools.ActionStartPayment,
	"complete": tools.ActionCompleteCheckout,
	"cancel":   tools.ActionCancelCheckout,
	"order":    tools.ActionGetOrder,
}

// positional names bare arguments, in order. A trailing "*" field takes the
// rest of the line.
var positional = map[string][]string{
	tools.ActionSearchCatalog:      {"query*"},
	tools.ActionAddToCheckout:      {"product_id", "quantity"},
	tools.ActionRemoveFromCheckout: {"product_id"},
	tools.ActionUpdateCheckout:     {"product_id", "quantity"},
	tools.ActionCompleteCheckout:   {"payment_handler_id", "payment_token"},
	tools.ActionGetOrder:           {"order_id"},
}

// parseLine turns a shell line into an action name and JSON arguments.
// Arguments are either a JSON object, key=value pairs, or positional values:
//
//	search red roses
//	add bouquet_roses 2
//	details first_name=Ada last_name=Lovelace "street_address=1 Main St"
//	complete {"payment_handler_id":"mock_payment_handler"}
func parseLine(line string) (string, json.RawMessage, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	if full, ok := aliases[name]; ok {
		name = full
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return name, nil, nil
	}
	if strings.HasPrefix(rest, "{") {
		if !json.Valid([]byte(rest)) {
			return "", nil, fmt.Errorf("invalid JSON arguments")
		}
		return name, json.RawMessage(rest), nil
	}

	tokens, err := splitArgs(rest)
	if err != nil {
		return "", nil, err
	}

	args := map[string]any{}
	fields := positional[name]
	for i, tok := range tokens {
		if key, val, ok := strings.Cut(tok, "="); ok && key != "" {
			args[key] = argValue(key, val)
			continue
		}
		if i >= len(fields) {
			return "", nil, fmt.Errorf("unexpected argument %q", tok)
		}
		field := fields[i]
		if key, ok := strings.CutSuffix(field, "*"); ok {
			args[key] = strings.Join(tokens[i:], " ")
			break
		}
		args[field] = argValue(field, tok)
	}

	data, err := json.Marshal(args)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// argValue keeps everything a string except quantity.
func argValue(key, val string) any {
	if key == "quantity" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return val
}

// splitArgs splits on whitespace, honouring double quotes.
func splitArgs(s string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		inToken bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && (r == ' ' || r == '\t'):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// runShell reads lines from in until EOF or "exit", running each as an action.
func runShell(ctx context.Context, in io.Reader, p printer, s *tools.Surface) error {
	scanner := bufio.NewScanner(in)
	prompt := func() { fmt.Fprintf(p.out, "%sucp>%s ", colorCyan, colorReset) }

	p.info("Type 'help' for commands, 'exit' to quit.")
	prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		case "help":
			printHelp(p)
		case "reset":
			s.Engine().Reset()
			p.success("Session cleared.")
		default:
			name, args, err := parseLine(line)
			if err != nil {
				p.error("%v", err)
				break
			}
			p.result(s.Invoke(ctx, name, args))
		}
		prompt()
	}
	fmt.Fprintln(p.out)
	return scanner.Err()
}

func printHelp(p printer) {
	p.heading("Actions:")
	for _, name := range tools.Names() {
		fmt.Fprintf(p.out, "  %-26s %s\n", name, tools.Describe(name))
	}
	p.heading("Shortcuts:")
	fmt.Fprintln(p.out, "  search, add, remove, update, cart, details, pay, complete, cancel, order")
	p.heading("Shell:")
	fmt.Fprintln(p.out, "  reset   forget the current checkout")
	fmt.Fprintln(p.out, "  exit    leave the shell")
}
