package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/config"
)

func testPalette() *colour.Palette {
	colors := colour.NewSwatches()
	for _, kv := range [][2]string{
		{"bg", "#1a1b26"}, {"bg1", "#24283b"}, {"bg2", "#2f3549"}, {"bg3", "#414868"},
		{"bg4", "#565f89"}, {"bg5", "#6b7394"}, {"fg", "#c0caf5"},
		{"red", "#f7768e"}, {"blue", "#7aa2f7"},
	} {
		colors.Set(kv[0], colour.MustHex(kv[1]))
	}
	return &colour.Palette{Image: "/walls/night.png", Mode: colour.ModeDark, Colors: colors}
}

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	root := t.TempDir()
	p := config.Paths{
		Config: filepath.Join(root, "config"),
		Cache:  filepath.Join(root, "cache"),
	}
	if err := os.MkdirAll(p.TemplateDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func execute(t *testing.T, src string) (string, error) {
	t.Helper()
	tmpl, err := template.New("test").Funcs(TemplateFuncs()).Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, NewData(testPalette()))
	return buf.String(), err
}

func TestTemplateFuncs(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`{{ get . "red" | hex }}`, "#f7768e"},
		{`{{ get . "red" | hexNoHash }}`, "f7768e"},
		{`{{ get . "red" | hexNoHash | toUpper }}`, "F7768E"},
		{`{{ get . "bg" | rgb }}`, "rgb(26, 27, 38)"},
		{`{{ $c := get . "blue" }}{{ r $c }},{{ g $c }},{{ b $c }}`, "122,162,247"},
		{`{{ nr (get . "fg") | printf "%.3f" }}`, "0.753"},
		{`{{ .Colors.blue | hex }}`, "#7aa2f7"},
		{`{{ image . }}`, "/walls/night.png"},
		{`{{ mode . }}`, "dark"},
		{`{{ has . "red" }} {{ has . "green" }}`, "true false"},
		{`{{ range .Accents }}{{ .Name }} {{ end }}`, "red blue "},
		{`{{ len .Slots }}`, "9"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := execute(t, tt.src)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplateFuncsMissingSlot(t *testing.T) {
	if _, err := execute(t, `{{ get . "green" | hex }}`); err == nil {
		t.Error("Execute() expected error for missing slot")
	}
}

func TestLoadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")

	entries, err := LoadEntries(path)
	if err != nil || entries != nil {
		t.Fatalf("LoadEntries(missing) = %v, %v, want nil, nil", entries, err)
	}

	data := `
[[template]]
program = "kitty"
name = "kitty.conf"
alias = "palsnap.conf"
dir = "~/.config/kitty"
cmd = "kitty @ set-colors --all ~/.config/kitty/palsnap.conf"

[[template]]
name = "colors.sh"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err = LoadEntries(path)
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	want := []Entry{
		{Program: "kitty", Name: "kitty.conf", Alias: "palsnap.conf", Dir: "~/.config/kitty", Cmd: "kitty @ set-colors --all ~/.config/kitty/palsnap.conf"},
		{Name: "colors.sh"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("LoadEntries() mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("[[template]]\nprogram = \"x\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var ice *config.InvalidConfigError
	if _, err := LoadEntries(path); !errors.As(err, &ice) {
		t.Errorf("LoadEntries(no name) error = %v, want *config.InvalidConfigError", err)
	}
}

type fakeProcess struct {
	exe string
}

func (p fakeProcess) Pid() int           { return 1 }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.exe }

func TestRenderAll(t *testing.T) {
	paths := testPaths(t)
	outDir := filepath.Join(t.TempDir(), "kitty")

	templates := `
[[template]]
program = "kitty"
name = "kitty.conf"
alias = "palsnap.conf"
dir = "` + outDir + `"
cmd = "kitty @ set-colors --all '` + filepath.Join(outDir, "palsnap.conf") + `'"

[[template]]
program = "waybar"
name = "waybar.css"
cmd = "pkill -SIGUSR2 waybar"

[[template]]
name = "missing.conf"
`
	if err := os.WriteFile(paths.TemplatesFile(), []byte(templates), 0o600); err != nil {
		t.Fatal(err)
	}
	kitty := "background {{ get . \"bg\" | hex }}\nforeground {{ get . \"fg\" | hex }}\n"
	if err := os.WriteFile(filepath.Join(paths.TemplateDir(), "kitty.conf"), []byte(kitty), 0o600); err != nil {
		t.Fatal(err)
	}
	waybar := "@define-color accent {{ .Colors.red | hex }};\n"
	if err := os.WriteFile(filepath.Join(paths.TemplateDir(), "waybar.css"), []byte(waybar), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(paths, nil)
	r.processes = func() ([]ps.Process, error) {
		return []ps.Process{fakeProcess{"bash"}, fakeProcess{"kitty"}}, nil
	}
	var ran [][]string
	r.run = func(_ context.Context, args []string) error {
		ran = append(ran, args)
		return nil
	}

	report, err := r.RenderAll(context.Background(), testPalette())
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "palsnap.conf"))
	if err != nil {
		t.Fatalf("kitty output not written: %v", err)
	}
	if want := "background #1a1b26\nforeground #c0caf5\n"; string(got) != want {
		t.Errorf("kitty output = %q, want %q", got, want)
	}

	got, err = os.ReadFile(filepath.Join(paths.OutputDir(), "waybar.css"))
	if err != nil {
		t.Fatalf("waybar output not written to the default directory: %v", err)
	}
	if want := "@define-color accent #f7768e;\n"; string(got) != want {
		t.Errorf("waybar output = %q, want %q", got, want)
	}

	css, err := os.ReadFile(filepath.Join(paths.OutputDir(), "styles.css"))
	if err != nil {
		t.Fatalf("styles.css not written: %v", err)
	}
	for _, want := range []string{"--bg: #1a1b26;", "#red {", "#f7768e"} {
		if !strings.Contains(string(css), want) {
			t.Errorf("styles.css missing %q", want)
		}
	}
	if _, err := os.Stat(filepath.Join(paths.OutputDir(), "preview.html")); err != nil {
		t.Errorf("preview.html not written: %v", err)
	}

	if diff := cmp.Diff([]string{"missing.conf"}, report.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"kitty"}, report.Refreshed); diff != "" {
		t.Errorf("Refreshed mismatch (-want +got):\n%s", diff)
	}
	wantArgs := [][]string{{"kitty", "@", "set-colors", "--all", filepath.Join(outDir, "palsnap.conf")}}
	if diff := cmp.Diff(wantArgs, ran); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAllContinuesAfterFailure(t *testing.T) {
	paths := testPaths(t)
	templates := `
[[template]]
name = "broken.conf"

[[template]]
name = "good.conf"
`
	if err := os.WriteFile(paths.TemplatesFile(), []byte(templates), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(paths.TemplateDir(), "broken.conf"), []byte(`{{ get . "nope" | hex }}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(paths.TemplateDir(), "good.conf"), []byte(`{{ mode . }}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewRenderer(paths, nil).RenderAll(context.Background(), testPalette())
	if err == nil || !strings.Contains(err.Error(), "broken.conf") {
		t.Errorf("RenderAll() error = %v, want failure naming broken.conf", err)
	}
	got, readErr := os.ReadFile(filepath.Join(paths.OutputDir(), "good.conf"))
	if readErr != nil || string(got) != "dark" {
		t.Errorf("good.conf = %q, %v, want \"dark\"", got, readErr)
	}
}

func TestRenderAllSkipsRefreshOnFailedRender(t *testing.T) {
	paths := testPaths(t)
	templates := `
[[template]]
program = "kitty"
name = "broken.conf"
cmd = "kitty @ set-colors --all broken.conf"
`
	if err := os.WriteFile(paths.TemplatesFile(), []byte(templates), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(paths.TemplateDir(), "broken.conf"), []byte(`{{ get . "nope" | hex }}`), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(paths, nil)
	r.processes = func() ([]ps.Process, error) {
		return []ps.Process{fakeProcess{"kitty"}}, nil
	}
	var ran [][]string
	r.run = func(_ context.Context, args []string) error {
		ran = append(ran, args)
		return nil
	}

	report, err := r.RenderAll(context.Background(), testPalette())
	if err == nil || !strings.Contains(err.Error(), "broken.conf") {
		t.Errorf("RenderAll() error = %v, want failure naming broken.conf", err)
	}
	if len(ran) != 0 {
		t.Errorf("refresh ran %v after a failed render, want nothing", ran)
	}
	if len(report.Refreshed) != 0 {
		t.Errorf("Refreshed = %v, want empty", report.Refreshed)
	}
}

func TestLoaderCustomOverride(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir)

	content, custom, err := l.Load("styles.css.tmpl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if custom || len(content) == 0 {
		t.Errorf("Load() = %d bytes, custom %v, want embedded content", len(content), custom)
	}

	out, err := l.Dump("styles.css.tmpl", false)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if _, err := l.Dump("styles.css.tmpl", false); err == nil {
		t.Error("Dump() over existing file expected error")
	}
	if err := os.WriteFile(out, []byte("body {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	content, custom, err = l.Load("styles.css.tmpl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !custom || string(content) != "body {}" {
		t.Errorf("Load() = %q, custom %v, want custom override", content, custom)
	}

	if _, _, err := l.Load("nonexistent.tmpl"); err == nil {
		t.Error("Load(nonexistent) expected error")
	}

	names, err := l.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"preview.html.tmpl", "styles.css.tmpl"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}
