// FILE: companion/internal/settings/processor.go
package settings

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openxr-toolkit/companion/internal/store"
	"github.com/sirupsen/logrus"
)

// RunningKey is the global string value naming the application the layer is attached to.
const RunningKey = "running"

const (
	appToken  = "app"
	dumpToken = "dump"
)

// Store is the subset of store.Store the processor needs.
type Store interface {
	Int(scope, name string) (int, bool, error)
	SetInt(scope, name string, value int) error
	String(scope, name string) (string, bool, error)
}

// Processor applies command-line setting assignments to a Store.
// It holds no state between calls; every value is re-read from the store.
type Processor struct {
	store  Store
	table  Table
	logger *logrus.Logger
	out    io.Writer
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOutput sets where dump lines are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Processor) {
		if w != nil {
			p.out = w
		}
	}
}

// NewProcessor creates a processor for the settings in table.
func NewProcessor(s Store, table Table, opts ...Option) *Processor {
	p := &Processor{
		store:  s,
		table:  table,
		logger: logrus.StandardLogger(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes an application invocation:
//
//	[app <name>] dump
//	[app <name>] (-<setting> <value>)*
//
// Without an explicit "app" pair the running application recorded in the global
// scope is used. Assignments are written one by one as they are parsed, so on error
// every assignment before the failing token stays applied.
func (p *Processor) Run(tokens []string) error {
	app, rest, err := p.resolveApplication(tokens)
	if err != nil {
		return err
	}

	if isDump(rest) {
		return p.dump(app, appToken+" "+quoteToken(app))
	}
	return p.assign(app, rest)
}

// RunScope processes "dump" or assignments against a fixed scope,
// without application resolution.
func (p *Processor) RunScope(scope string, tokens []string) error {
	if isDump(tokens) {
		return p.dump(scope, "")
	}
	return p.assign(scope, tokens)
}

func isDump(tokens []string) bool {
	return len(tokens) == 1 && tokens[0] == dumpToken
}

func (p *Processor) resolveApplication(tokens []string) (string, []string, error) {
	if len(tokens) >= 2 && tokens[0] == appToken {
		if tokens[1] == "" {
			return "", nil, &UsageError{Message: ErrNoApplication.Error(), Err: ErrNoApplication}
		}
		return tokens[1], tokens[2:], nil
	}

	running, found, err := p.store.String(store.GlobalScope, RunningKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read the running application: %w", err)
	}
	if !found || running == "" {
		return "", nil, &UsageError{Message: ErrNoApplication.Error(), Err: ErrNoApplication}
	}

	p.logger.WithField("app", running).Debug("Using running application")
	return running, tokens, nil
}

func (p *Processor) assign(scope string, tokens []string) error {
	for i := 0; i < len(tokens); i += 2 {
		flag := tokens[i]

		name, isFlag := strings.CutPrefix(flag, "-")
		if !isFlag || name == "" {
			return usageErrorf("Invalid argument: %s", flag)
		}
		d, found := p.table.Lookup(name)
		if !found {
			return usageErrorf("Invalid argument: %s", flag)
		}
		if i+1 >= len(tokens) {
			return usageErrorf("Must specify a value for argument %s", flag)
		}

		if err := p.apply(scope, d, normalizeValue(tokens[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) apply(scope string, d Descriptor, value string) error {
	if d.Kind == SimpleToggle {
		return p.toggle(scope, d, value)
	}

	current, err := p.read(scope, d.StorageKey, d.Default)
	if err != nil {
		return err
	}

	next, err := parseValue(d, value, current)
	if err != nil {
		return err
	}

	return p.write(scope, d, d.StorageKey, next)
}

// toggle writes the backup slot (or current XOR 1) as the new value and
// remembers the previous value in the backup slot.
func (p *Processor) toggle(scope string, d Descriptor, value string) error {
	if value != toggleValue {
		return usageErrorf("Unsupported value: %s", value)
	}

	current, err := p.read(scope, d.StorageKey, d.Default)
	if err != nil {
		return err
	}

	restore := current ^ 1
	backup, found, err := p.store.Int(scope, d.BackupKey())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", d.BackupKey(), err)
	}
	if found {
		restore = backup
	}

	if err := p.write(scope, d, d.StorageKey, restore); err != nil {
		return err
	}
	return p.write(scope, d, d.BackupKey(), current)
}

func (p *Processor) read(scope, name string, def int) (int, error) {
	v, found, err := p.store.Int(scope, name)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !found {
		return def, nil
	}
	return v, nil
}

func (p *Processor) write(scope string, d Descriptor, name string, value int) error {
	if err := p.store.SetInt(scope, name, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	p.logger.WithFields(logrus.Fields{
		"scope":   scope,
		"setting": d.ArgumentName,
		"name":    name,
		"value":   value,
	}).Debug("Setting updated")
	return nil
}

// dump prints one line that, fed back as tokens, reproduces every stored value.
// Toggle settings have no stable textual form and are left out.
func (p *Processor) dump(scope, prefix string) error {
	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}

	for _, d := range p.table {
		if d.Kind == SimpleToggle {
			continue
		}

		v, err := p.read(scope, d.StorageKey, d.Default)
		if err != nil {
			return err
		}
		if d.Kind == Cyclic && (v < d.Min || v > d.Max) {
			p.logger.WithFields(logrus.Fields{
				"scope":   scope,
				"setting": d.ArgumentName,
				"value":   v,
			}).Warn("Stored value out of range")
		}

		s, ok := formatValue(d, v)
		if !ok {
			continue
		}
		parts = append(parts, "-"+d.ArgumentName, s)
	}

	if _, err := fmt.Fprintln(p.out, strings.Join(parts, " ")); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

// quoteToken quotes application names that a shell would split.
func quoteToken(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
