package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/ops"
)

// ErrSyntax is matched by every error returned from [Parse].
var ErrSyntax = errors.New("script syntax error")

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line int
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSyntax, e.Err}
	}
	return []error{ErrSyntax}
}

// DefaultCarriers is the carrier list used when the script has no Carriers
// header.
var DefaultCarriers = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

// Script is a parsed script.
type Script struct {
	Version    int
	Carriers   []string
	MaxRacking int // zero when unbounded
	Start      []StartLoop
	Lines      []Line
	Warnings   []Warning
}

// StartLoop is one loop of the initial chain. Every loop after the first is
// linked to its predecessor; Slack is the budget of that link when HasSlack.
type StartLoop struct {
	Needle   knit.NeedleRef
	Slack    float64
	HasSlack bool
}

// Line is one step of the script.
type Line struct {
	Number int
	Label  string
	Ops    []ops.Op
}

// Warning is a non-fatal remark about a line.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string { return fmt.Sprintf("line %d: %s", w.Line, w.Msg) }

var (
	versionRe = regexp.MustCompile(`^;!knitout-(\d+)\s*$`)
	headerRe  = regexp.MustCompile(`^;;([^:]+):\s*(.*)$`)
	labelRe   = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*:\s*(.*)$`)
	numberRe  = regexp.MustCompile(`^[-+]?(\.\d+|\d+\.\d*|\d+)$`)
)

// ParseString parses a script held in memory.
func ParseString(s string) (*Script, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads a whole script. It stops at the first malformed line.
func Parse(r io.Reader) (*Script, error) {
	p := &parser{s: &Script{Carriers: slices.Clone(DefaultCarriers)}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		p.line++
		done, err := p.parseLine(sc.Text())
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return p.s, nil
}

type parser struct {
	s          *Script
	line       int
	sawStart   bool
	sawCarrier bool
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) warnf(format string, args ...any) {
	p.s.Warnings = append(p.s.Warnings, Warning{Line: p.line, Msg: fmt.Sprintf(format, args...)})
}

// parseLine handles one raw line and reports whether parsing should stop.
func (p *parser) parseLine(raw string) (bool, error) {
	text := strings.TrimSpace(raw)
	if m := versionRe.FindStringSubmatch(text); m != nil {
		if p.line != 1 {
			p.warnf("version line ignored after line 1")
			return false, nil
		}
		p.s.Version, _ = strconv.Atoi(m[1])
		return false, nil
	}
	if m := headerRe.FindStringSubmatch(text); m != nil {
		return false, p.header(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	}
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return false, nil
	}

	fields := strings.Fields(text)
	if strings.HasPrefix(fields[0], "x-") {
		return p.extension(fields[0], fields[1:])
	}

	line := Line{Number: p.line}
	if m := labelRe.FindStringSubmatch(text); m != nil {
		line.Label, text = m[1], strings.TrimSpace(m[2])
		if text == "" {
			p.warnf("label %q has no operations", line.Label)
			return false, nil
		}
	}
	for _, part := range strings.Split(text, ",") {
		toks := strings.Fields(part)
		if len(toks) == 0 {
			return false, p.errorf("empty operation in %q", text)
		}
		op, err := p.op(toks)
		if err != nil {
			return false, err
		}
		line.Ops = append(line.Ops, op)
	}
	p.s.Lines = append(p.s.Lines, line)
	return false, nil
}

func (p *parser) header(name, value string) error {
	if name != "Carriers" {
		return nil
	}
	if p.sawCarrier {
		return p.errorf("Carriers header given twice")
	}
	if len(p.s.Lines) > 0 {
		return p.errorf("Carriers header must come before any operation")
	}
	names := strings.Fields(value)
	if len(names) == 0 {
		return p.errorf("Carriers header lists no carriers")
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			return p.errorf("carrier %q listed twice in Carriers header", n)
		}
		seen[n] = true
	}
	p.sawCarrier = true
	p.s.Carriers = names
	return nil
}

func (p *parser) extension(name string, args []string) (bool, error) {
	switch name {
	case "x-end":
		return true, nil
	case "x-max-racking":
		if len(args) != 1 {
			return false, p.errorf("x-max-racking takes exactly one argument")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return false, p.errorf("x-max-racking value [%s] must be a non-negative integer", args[0])
		}
		p.s.MaxRacking = n
	case "x-start":
		return false, p.start(args)
	default:
		p.warnf("unrecognized extension operation %q", name)
	}
	return false, nil
}

// start parses "needle [slack] needle [slack] needle ...".
func (p *parser) start(args []string) error {
	if p.sawStart {
		return p.errorf("x-start given twice")
	}
	if len(p.s.Lines) > 0 {
		return p.errorf("x-start must come before any operation")
	}
	if len(args) == 0 {
		return p.errorf("x-start needs at least one needle")
	}
	var chain []StartLoop
	var pending *StartLoop
	for _, tok := range args {
		if n, err := knit.ParseNeedle(tok); err == nil {
			loop := StartLoop{Needle: n}
			if pending != nil {
				loop.Slack, loop.HasSlack = pending.Slack, pending.HasSlack
				pending = nil
			}
			chain = append(chain, loop)
			continue
		}
		if len(chain) == 0 || pending != nil {
			return p.needleError(tok)
		}
		switch {
		case tok == "*":
			pending = &StartLoop{}
		case numberRe.MatchString(tok):
			v, _ := strconv.ParseFloat(tok, 64)
			if v < 0 {
				return p.errorf("slack [%s] must not be negative", tok)
			}
			pending = &StartLoop{Slack: v, HasSlack: true}
		default:
			return p.errorf("x-start token [%s] is neither a needle nor a slack value", tok)
		}
	}
	if pending != nil {
		return p.errorf("x-start must end with a needle")
	}
	p.sawStart = true
	p.s.Start = chain
	return nil
}

func (p *parser) needleError(tok string) error {
	_, err := knit.ParseNeedle(tok)
	return &SyntaxError{
		Line: p.line,
		Msg:  fmt.Sprintf("Needle [%s] must be f,b,fs, or bs followed by an integer.", tok),
		Err:  err,
	}
}

func (p *parser) needle(tok string) (knit.NeedleRef, error) {
	n, err := knit.ParseNeedle(tok)
	if err != nil {
		return knit.NeedleRef{}, p.needleError(tok)
	}
	return n, nil
}

func (p *parser) carrierSet(toks []string) ([]string, error) {
	seen := make(map[string]bool, len(toks))
	for _, cn := range toks {
		if !slices.Contains(p.s.Carriers, cn) {
			return nil, p.errorf("Carrier name [%s] does not appear in Carriers header.", cn)
		}
		if seen[cn] {
			return nil, p.errorf("Carrier name [%s] appears twice in carrier set.", cn)
		}
		seen[cn] = true
	}
	return toks, nil
}

func (p *parser) number(what, tok string) (float64, error) {
	if !numberRe.MatchString(tok) {
		return 0, p.errorf("%s value [%s] must be a simple floating point value.", what, tok)
	}
	v, _ := strconv.ParseFloat(tok, 64)
	return v, nil
}

func (p *parser) op(toks []string) (ops.Op, error) {
	name, args := toks[0], toks[1:]
	switch name {
	case "drop":
		if len(args) != 1 {
			return nil, p.errorf("drop takes exactly one argument")
		}
		name, args = "knit", append([]string{"+"}, args...)
	case "amiss":
		if len(args) != 1 {
			return nil, p.errorf("amiss takes exactly one argument")
		}
		name, args = "tuck", append([]string{"+"}, args...)
	}

	kind, ok := ops.KindOf(name)
	if !ok {
		if len(toks) == 2 {
			from, errFrom := knit.ParseNeedle(toks[0])
			to, errTo := knit.ParseNeedle(toks[1])
			if errFrom == nil && errTo == nil {
				return ops.Xfer{From: from, To: to}, nil
			}
		}
		return nil, p.errorf("unrecognized operation %q", strings.Join(toks, " "))
	}

	switch kind {
	case ops.KindIn, ops.KindOut, ops.KindInhook, ops.KindOuthook, ops.KindReleasehook:
		if len(args) == 0 {
			return nil, p.errorf("%s requires a carrier set", name)
		}
		cs, err := p.carrierSet(args)
		if err != nil {
			return nil, err
		}
		return ops.CarrierOp{Op: kind, Carriers: cs}, nil

	case ops.KindStitch:
		if len(args) != 2 {
			return nil, p.errorf("stitch takes exactly two arguments")
		}
		l, err := p.number("Stitch", args[0])
		if err != nil {
			return nil, err
		}
		t, err := p.number("Stitch", args[1])
		if err != nil {
			return nil, err
		}
		return ops.StitchSize{Length: l, Tension: t}, nil

	case ops.KindRack:
		if len(args) != 1 {
			return nil, p.errorf("rack takes exactly one argument")
		}
		r, err := p.number("Racking", args[0])
		if err != nil {
			return nil, err
		}
		return ops.Rack{Racking: r}, nil

	case ops.KindPause:
		if len(args) != 0 {
			return nil, p.errorf("pause takes no arguments")
		}
		return ops.Pause{}, nil

	case ops.KindXfer:
		if len(args) != 2 {
			return nil, p.errorf("xfer takes exactly two arguments")
		}
		from, err := p.needle(args[0])
		if err != nil {
			return nil, err
		}
		to, err := p.needle(args[1])
		if err != nil {
			return nil, err
		}
		return ops.Xfer{From: from, To: to}, nil

	case ops.KindSplit:
		if len(args) < 3 {
			return nil, p.errorf("split requires at least three arguments")
		}
		d, err := p.direction(args[0])
		if err != nil {
			return nil, err
		}
		n, err := p.needle(args[1])
		if err != nil {
			return nil, err
		}
		n2, err := p.needle(args[2])
		if err != nil {
			return nil, err
		}
		cs, err := p.carrierSet(args[3:])
		if err != nil {
			return nil, err
		}
		return ops.Split{Dir: d, Needle: n, Target: n2, Carriers: cs}, nil

	default: // knit, tuck, miss
		if len(args) < 2 {
			return nil, p.errorf("%s requires at least two arguments", name)
		}
		d, err := p.direction(args[0])
		if err != nil {
			return nil, err
		}
		n, err := p.needle(args[1])
		if err != nil {
			return nil, err
		}
		cs, err := p.carrierSet(args[2:])
		if err != nil {
			return nil, err
		}
		return ops.Stitch{Op: kind, Dir: d, Needle: n, Carriers: cs}, nil
	}
}

func (p *parser) direction(tok string) (ops.Direction, error) {
	d, err := ops.ParseDirection(tok)
	if err != nil {
		return 0, p.errorf("Direction [%s] must be '+' or '-'.", tok)
	}
	return d, nil
}
