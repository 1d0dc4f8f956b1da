// Package adjudicate asks a human to resolve fuzzy match candidates at the
// terminal. Choosing is always explicit; there is no default answer.
package adjudicate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cartsync"
)

// Terminal prompts on out and reads decisions from in, one line per item.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

// Adjudicate presents the candidates for one item. The answer is a
// candidate number, "n" to mark the item as new to the library, or "s" to
// skip. Anything else re-prompts.
func (t *Terminal) Adjudicate(ctx context.Context, item string, candidates []cartsync.ScoredProduct) (cartsync.Adjudication, error) {
	fmt.Fprintf(t.out, "\nNo exact mapping for %q.\n", item)
	for i, c := range candidates {
		fmt.Fprintf(t.out, "  [%d] %3.0f%%  %s (id %s)\n", i+1, c.Score*100, c.Product.Name, c.Product.ID)
	}

	for {
		if err := ctx.Err(); err != nil {
			return cartsync.Adjudication{}, err
		}
		fmt.Fprintf(t.out, "Pick 1-%d, [n]ew item, or [s]kip: ", len(candidates))

		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return cartsync.Adjudication{}, err
			}
			return cartsync.Adjudication{}, io.EOF
		}

		answer := strings.ToLower(strings.TrimSpace(t.in.Text()))
		switch answer {
		case "n":
			return cartsync.Adjudication{MarkedNew: true}, nil
		case "s", "":
			return cartsync.Adjudication{}, nil
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(candidates) {
			product := candidates[n-1].Product
			return cartsync.Adjudication{Product: &product}, nil
		}

		fmt.Fprintf(t.out, "Unrecognized answer %q.\n", answer)
	}
}
