// Package render writes palettes out through text templates and refreshes
// the programs that read them.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/config"
)

// Entry is one [[template]] block of templates.toml.
type Entry struct {
	// Program is the executable name checked before running Cmd.
	Program string `toml:"program"`
	// Name is the template file in the templates directory.
	Name string `toml:"name"`
	// Alias is the output file name; defaults to Name.
	Alias string `toml:"alias"`
	// Dir is the output directory; defaults to the cache output directory.
	Dir string `toml:"dir"`
	// Cmd reloads Program after rendering.
	Cmd string `toml:"cmd"`
}

type entriesFile struct {
	Template []Entry `toml:"template"`
}

// LoadEntries reads the template list. A missing file yields no entries.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f entriesFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, e := range f.Template {
		if e.Name == "" {
			return nil, &config.InvalidConfigError{
				Key:    fmt.Sprintf("template[%d].name", i),
				Reason: "template name is required",
			}
		}
	}
	return f.Template, nil
}

// Report lists what a render pass did.
type Report struct {
	Written   []string
	Skipped   []string
	Refreshed []string
}

// Renderer renders the built-in and user templates for a palette.
type Renderer struct {
	paths   config.Paths
	builtin *Loader
	logger  hclog.Logger

	processes func() ([]ps.Process, error)
	run       func(ctx context.Context, args []string) error
}

// NewRenderer creates a Renderer reading templates from paths.
func NewRenderer(paths config.Paths, logger hclog.Logger) *Renderer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Renderer{
		paths:     paths,
		builtin:   NewLoader(paths.TemplateDir()),
		logger:    logger,
		processes: ps.Processes,
		run:       runCommand,
	}
}

// RenderAll writes the built-in templates to the output directory, then
// every entry of templates.toml, refreshing programs that are running.
// A failing entry does not stop the others; all failures are returned joined.
func (r *Renderer) RenderAll(ctx context.Context, p *colour.Palette) (Report, error) {
	var report Report
	data := NewData(p)

	entries, err := LoadEntries(r.paths.TemplatesFile())
	if err != nil {
		return report, err
	}

	var errs []error
	if err := r.renderBuiltins(data, &report); err != nil {
		errs = append(errs, err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := r.renderEntry(e, data, &report); err != nil {
			// The program would reload a stale file.
			errs = append(errs, err)
			continue
		}
		if e.Cmd == "" {
			continue
		}
		if err := r.refresh(ctx, e, &report); err != nil {
			r.logger.Warn("failed to refresh program", "program", e.Program, "error", err)
			errs = append(errs, err)
		}
	}
	return report, errors.Join(errs...)
}

func (r *Renderer) renderBuiltins(data *Data, report *Report) error {
	names, err := r.builtin.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		content, custom, err := r.builtin.Load(name)
		if err != nil {
			return err
		}
		out := filepath.Join(r.paths.OutputDir(), outputName(name))
		if err := writeTemplate(name, string(content), data, out); err != nil {
			return err
		}
		r.logger.Debug("rendered built-in template", "template", name, "custom", custom, "output", out)
		report.Written = append(report.Written, out)
	}
	return nil
}

func (r *Renderer) renderEntry(e Entry, data *Data, report *Report) error {
	src := filepath.Join(r.paths.TemplateDir(), e.Name)
	content, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("template does not exist", "template", e.Name, "path", src)
		report.Skipped = append(report.Skipped, e.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", e.Name, err)
	}

	dir := e.Dir
	if dir == "" {
		dir = r.paths.OutputDir()
	}
	if dir, err = homedir.Expand(dir); err != nil {
		return fmt.Errorf("failed to expand %s: %w", e.Dir, err)
	}
	alias := e.Alias
	if alias == "" {
		alias = e.Name
	}

	out := filepath.Join(dir, alias)
	if err := writeTemplate(e.Name, string(content), data, out); err != nil {
		return err
	}
	r.logger.Info("generated template", "template", e.Name, "output", out)
	report.Written = append(report.Written, out)
	return nil
}

func writeTemplate(name, content string, data *Data, out string) error {
	tmpl, err := template.New(name).Funcs(TemplateFuncs()).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", out, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil { // #nosec G306 - rendered configs are read by other programs
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

// refresh runs the entry's command if its program is running.
func (r *Renderer) refresh(ctx context.Context, e Entry, report *Report) error {
	running, err := r.isRunning(e.Program)
	if err != nil {
		return err
	}
	if !running {
		r.logger.Debug("program not running, skipping refresh", "program", e.Program)
		return nil
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = true
	parser.ParseBacktick = true
	args, err := parser.Parse(e.Cmd)
	if err != nil {
		return fmt.Errorf("failed to parse command for %s: %w", e.Program, err)
	}
	if len(args) == 0 {
		return fmt.Errorf("command for %s is empty", e.Program)
	}

	r.logger.Info("refreshing program", "program", e.Program)
	if err := r.run(ctx, args); err != nil {
		return fmt.Errorf("failed to refresh %s: %w", e.Program, err)
	}
	report.Refreshed = append(report.Refreshed, e.Program)
	return nil
}

func (r *Renderer) isRunning(program string) (bool, error) {
	if program == "" {
		return false, nil
	}
	procs, err := r.processes()
	if err != nil {
		return false, fmt.Errorf("failed to get process list: %w", err)
	}
	for _, p := range procs {
		if p.Executable() == program {
			return true, nil
		}
	}
	return false, nil
}

func runCommand(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // #nosec G204 - command comes from the user's templates.toml
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
