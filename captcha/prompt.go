package captcha

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// ConsolePrompt asks the operator on out and waits for a line on in.
type ConsolePrompt struct {
	in  *bufio.Reader
	out io.Writer

	// pending is a read still waiting for input after its Confirm was
	// cancelled. The next Confirm takes it over instead of reading in
	// parallel.
	pending chan readResult
}

type readResult struct {
	line string
	err  error
}

func NewConsolePrompt(in io.Reader, out io.Writer) *ConsolePrompt {
	return &ConsolePrompt{in: bufio.NewReader(in), out: out}
}

// Confirm returns once the operator enters a line, or with ctx.Err() when ctx
// is cancelled first.
func (p *ConsolePrompt) Confirm(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintln(p.out, message)

	read := p.pending
	if read == nil {
		read = make(chan readResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			read <- readResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		p.pending = read
		return ctx.Err()
	case res := <-read:
		p.pending = nil
		switch {
		case res.err == io.EOF && res.line == "":
			return fmt.Errorf("operator input closed before confirmation")
		case res.err != nil && res.err != io.EOF:
			return fmt.Errorf("failed to read operator confirmation: %w", res.err)
		}
		return nil
	}
}
