// Package cli parses and runs the baseconv command line.
package cli

import (
	"errors"
	"flag"
	"fmt"

	"github.com/coachpo/baseconv/internal/infra/config"
	"github.com/coachpo/baseconv/pkg/numeral"
)

// DefaultConfigPath is read when -config is not given; a missing file means defaults.
const DefaultConfigPath = "config/baseconv.yaml"

// Options holds all CLI flags and arguments.
type Options struct {
	From int
	To   int

	// Precision is -1 when the configured precision applies.
	Precision int
	// StripZeros is nil when the configured setting applies.
	StripZeros *bool

	ConfigPath  string
	JSON        bool
	Batch       bool
	Interactive bool
	Swap        bool

	Numbers []string
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: convert numbers between bases 2 and 36

Usage of %s:
  %s -from 10 -to 2 12.375
  echo ff | %s -from 16 -to 8 -batch
  %s -i
`, name, name, name, name, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var strip string

	fs.IntVar(&opt.From, "from", 10, "source base, 2..36 [10]")
	fs.IntVar(&opt.To, "to", 2, "target base, 2..36 [2]")
	fs.IntVar(&opt.Precision, "precision", -1, "max fractional digits (-1 = configured) [-1]")
	fs.StringVar(&strip, "strip", "", "strip trailing fractional zeros: yes | no (empty = configured)")
	fs.StringVar(&opt.ConfigPath, "config", DefaultConfigPath, "configuration file ["+DefaultConfigPath+"]")
	fs.BoolVar(&opt.JSON, "json", false, "emit JSON results [false]")
	fs.BoolVar(&opt.Batch, "batch", false, "read one number per line from stdin [false]")
	fs.BoolVar(&opt.Interactive, "i", false, "prompt for base, number and target base [false]")
	fs.BoolVar(&opt.Swap, "swap", false, "also convert the result back to the source base [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	opt.Numbers = fs.Args()

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["strip"] {
		v, err := config.ParseSwitch(strip)
		if err != nil {
			return opt, fmt.Errorf("invalid -strip: %w", err)
		}
		opt.StripZeros = &v
	}

	if opt.Interactive {
		if opt.Batch || len(opt.Numbers) > 0 {
			return opt, errors.New("-i conflicts with -batch and positional numbers")
		}
		return opt, nil
	}
	if !numeral.ValidBase(opt.From) {
		return opt, fmt.Errorf("-from must be in [%d, %d], got %d", numeral.MinBase, numeral.MaxBase, opt.From)
	}
	if !numeral.ValidBase(opt.To) {
		return opt, fmt.Errorf("-to must be in [%d, %d], got %d", numeral.MinBase, numeral.MaxBase, opt.To)
	}
	if opt.Precision < -1 {
		return opt, errors.New("-precision must be >= 0")
	}
	switch {
	case opt.Batch && len(opt.Numbers) > 0:
		return opt, errors.New("-batch reads stdin; drop the positional numbers")
	case !opt.Batch && len(opt.Numbers) == 0:
		return opt, errors.New("provide a number, -batch or -i")
	}
	return opt, nil
}

// PrecisionOverride returns the per-request precision, nil when configured.
func (o Options) PrecisionOverride() *int {
	if o.Precision < 0 {
		return nil
	}
	p := o.Precision
	return &p
}
