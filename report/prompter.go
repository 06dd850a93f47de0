package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/miretskiy/mm1ksim/simulator"
)

// ErrTooManyAttempts is returned when MaxAttempts sequences failed in a row
var ErrTooManyAttempts = errors.New("too many invalid parameter sets")

// Prompter reads run parameters interactively in the order λ, μ, K,
// FinishTime, StartTime. Any unparsable or invalid answer restarts the whole
// sequence.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer

	// MaxAttempts bounds the number of sequences tried (0 = unlimited)
	MaxAttempts int
	// Defaults provides the fields that are not prompted for
	Defaults simulator.SimConfig
}

// NewPrompter reads answers from in and writes prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:       bufio.NewScanner(in),
		out:      out,
		Defaults: simulator.DefaultConfig(),
	}
}

type question struct {
	label string
	set   func(c *simulator.SimConfig, answer string) error
}

var questions = []question{
	{"Mean arrival rate (λ)", func(c *simulator.SimConfig, a string) (err error) {
		c.ArrivalRate, err = strconv.ParseFloat(a, 64)
		return
	}},
	{"Mean service rate (μ)", func(c *simulator.SimConfig, a string) (err error) {
		c.ServiceRate, err = strconv.ParseFloat(a, 64)
		return
	}},
	{"System capacity (K)", func(c *simulator.SimConfig, a string) (err error) {
		c.Capacity, err = strconv.Atoi(a)
		return
	}},
	{"Simulation finish time", func(c *simulator.SimConfig, a string) (err error) {
		c.FinishTime, err = strconv.ParseFloat(a, 64)
		return
	}},
	{"Simulation start time", func(c *simulator.SimConfig, a string) (err error) {
		c.StartTime, err = strconv.ParseFloat(a, 64)
		return
	}},
}

// Prompt returns the first fully valid parameter set. Input ending before a
// set is complete is an error.
func (p *Prompter) Prompt() (simulator.SimConfig, error) {
	for attempt := 1; p.MaxAttempts == 0 || attempt <= p.MaxAttempts; attempt++ {
		config, fatal, err := p.promptOnce()
		if err == nil {
			return config, nil
		}
		if fatal {
			return simulator.SimConfig{}, err
		}
		fmt.Fprintf(p.out, "%v\nRestart please\n\n", err)
	}
	return simulator.SimConfig{}, ErrTooManyAttempts
}

// promptOnce asks every question once. fatal reports that the input itself
// failed and no restart can succeed.
func (p *Prompter) promptOnce() (config simulator.SimConfig, fatal bool, err error) {
	config = p.Defaults
	fmt.Fprintln(p.out, "Enter parameters")

	for _, q := range questions {
		fmt.Fprintf(p.out, "%s: ", q.label)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return config, true, fmt.Errorf("read %s: %w", q.label, err)
			}
			return config, true, fmt.Errorf("input closed at %s: %w", q.label, io.ErrUnexpectedEOF)
		}
		answer := strings.TrimSpace(p.in.Text())
		if err := q.set(&config, answer); err != nil {
			return config, false, fmt.Errorf("invalid %s %q", q.label, answer)
		}
	}

	if err := config.Validate(); err != nil {
		return config, false, err
	}
	return config, false, nil
}
