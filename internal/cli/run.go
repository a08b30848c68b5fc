package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/internal/app/converter"
)

// ErrConversionsFailed reports that at least one number could not be converted.
var ErrConversionsFailed = errors.New("one or more conversions failed")

// Runner drives conversions for the command line front-end.
type Runner struct {
	svc    *converter.Service
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewRunner wires a runner to its service and standard streams.
func NewRunner(svc *converter.Service, in io.Reader, out, errOut io.Writer) *Runner {
	return &Runner{svc: svc, in: in, out: out, errOut: errOut}
}

type jsonLine struct {
	Input  string            `json:"input"`
	Result *converter.Result `json:"result,omitempty"`
	Back   *converter.Result `json:"back,omitempty"`
	Error  string            `json:"error,omitempty"`
	Code   string            `json:"code,omitempty"`
}

// Run executes the mode selected by opt.
func (r *Runner) Run(ctx context.Context, opt Options) error {
	switch {
	case opt.Interactive:
		return r.interactive(ctx, opt)
	case opt.Batch:
		numbers, err := readNumbers(r.in)
		if err != nil {
			return err
		}
		return r.convertAll(ctx, opt, numbers)
	default:
		return r.convertAll(ctx, opt, opt.Numbers)
	}
}

func (r *Runner) convertAll(ctx context.Context, opt Options, numbers []string) error {
	reqs := make([]converter.Request, len(numbers))
	for i, n := range numbers {
		reqs[i] = r.request(opt.From, opt.To, n, opt)
	}

	var items []converter.BatchItem
	if len(reqs) == 1 {
		res, err := r.svc.Convert(ctx, reqs[0])
		items = []converter.BatchItem{{Index: 0, Result: res, Err: err}}
	} else {
		items = r.svc.ConvertBatch(ctx, reqs)
	}

	failed := converter.Failed(items)
	enc := json.NewEncoder(r.out)
	for i, item := range items {
		line := jsonLine{Input: numbers[i]}
		if item.Err != nil {
			line.Error = item.Err.Error()
			line.Code = string(item.ErrorCode())
		} else {
			res := item.Result
			line.Result = &res
			if opt.Swap {
				back, err := r.svc.Convert(ctx, r.request(opt.To, opt.From, res.Value, opt))
				if err != nil {
					line.Error = err.Error()
					line.Code = string(errs.CodeOf(err))
					failed++
				} else {
					line.Back = &back
				}
			}
		}

		if opt.JSON {
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			continue
		}
		r.writeText(line)
	}

	if failed > 0 {
		return ErrConversionsFailed
	}
	return nil
}

func (r *Runner) writeText(line jsonLine) {
	if line.Result != nil {
		fmt.Fprintln(r.out, line.Result.Value)
	}
	if line.Back != nil {
		fmt.Fprintln(r.out, line.Back.Value)
	}
	if line.Error != "" {
		fmt.Fprintf(r.errOut, "%s: %s\n", line.Input, line.Error)
	}
}

func (r *Runner) request(from, to int, number string, opt Options) converter.Request {
	return converter.Request{
		From:       from,
		To:         to,
		Number:     converter.Number(number),
		Precision:  opt.PrecisionOverride(),
		StripZeros: opt.StripZeros,
	}
}

// interactive prompts for a source base, a number and a target base until
// input ends or the user enters q.
func (r *Runner) interactive(ctx context.Context, opt Options) error {
	scanner := bufio.NewScanner(r.in)
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(r.out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		text := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(text, "q") {
			return "", false
		}
		return text, true
	}

	for ctx.Err() == nil {
		fromText, ok := ask("Source base: ")
		if !ok {
			break
		}
		number, ok := ask("Number: ")
		if !ok {
			break
		}
		toText, ok := ask("Target base: ")
		if !ok {
			break
		}

		from, err := strconv.Atoi(fromText)
		if err != nil {
			fmt.Fprintf(r.errOut, "invalid base %q\n", fromText)
			continue
		}
		to, err := strconv.Atoi(toText)
		if err != nil {
			fmt.Fprintf(r.errOut, "invalid base %q\n", toText)
			continue
		}

		res, err := r.svc.Convert(ctx, r.request(from, to, number, opt))
		if err != nil {
			fmt.Fprintf(r.errOut, "%s: %v\n", number, err)
			continue
		}
		fmt.Fprintf(r.out, "%s (base %d) = %s (base %d)\n", number, from, res.Value, to)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func readNumbers(in io.Reader) ([]string, error) {
	var numbers []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		numbers = append(numbers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return numbers, nil
}
