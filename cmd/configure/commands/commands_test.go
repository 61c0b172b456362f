package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benvon/mindful-harmony/internal/models"
)

const testCatalogYAML = `
- id: box_breath_5
  title: Box breathing
  mood_targets: [anxious, stressed]
  duration_min: 5
  energy: low
  context: [home, work, any]
- id: walk_15
  title: Short walk
  mood_targets: [low, restless]
  duration_min: 15
  energy: med
  context: [outside]
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cmd = NewCatalogCmd()
	if args[0] == "recommend" {
		cmd = NewRecommendCmd()
		args = args[1:]
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantOutputs []string
	}{
		{
			name:        "valid catalog",
			content:     testCatalogYAML,
			wantOutputs: []string{"2 activities", "No problems found"},
		},
		{
			name: "bad energy and duplicate id",
			content: testCatalogYAML + `
- id: walk_15
  title: Another walk
  mood_targets: [low]
  duration_min: 10
  energy: extreme
  context: [any]
`,
			wantErr:     true,
			wantOutputs: []string{"3 activities", `duplicate id "walk_15"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, "validate", writeCatalog(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.wantOutputs {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestCatalogValidateUnknownField(t *testing.T) {
	t.Parallel()

	_, err := run(t, "validate", writeCatalog(t, "- id: x\n  colour: blue\n"))
	if err == nil {
		t.Fatal("expected decode error for unknown field")
	}
}

func TestRecommendDryRun(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, testCatalogYAML)

	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantFirst string
	}{
		{
			name:      "anxious ranks box breathing first",
			args:      []string{"--mood", "Anxious", "--energy", "low", "--time", "5", "--catalog", path},
			wantFirst: "box_breath_5",
		},
		{
			name:      "low mood outside ranks walk first",
			args:      []string{"--mood", "low", "--time", "15", "--context", "outside", "--catalog", path},
			wantFirst: "walk_15",
		},
		{
			name:    "invalid energy",
			args:    []string{"--mood", "sad", "--energy", "extreme", "--catalog", path},
			wantErr: true,
		},
		{
			name:    "mood required",
			args:    []string{"--catalog", path},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, append([]string{"recommend"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			if tt.wantErr {
				return
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			var first string
			for i, line := range lines {
				if strings.HasPrefix(line, "RANK") && i+1 < len(lines) {
					first = lines[i+1]
					break
				}
			}
			if !strings.Contains(first, tt.wantFirst) {
				t.Errorf("first row = %q, want %s\n%s", first, tt.wantFirst, out)
			}
		})
	}
}

func TestPrintRatelimits(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printRatelimits(&buf, nil)
	if !strings.Contains(buf.String(), "No rate limit configuration") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printRatelimits(&buf, []models.RatelimitConfig{
		{ConfigKey: models.AIConfigKey, Rate: "20-M"},
		{ConfigKey: models.DefaultConfigKey, Rate: "100-M"},
	})
	for _, want := range []string{"ai: 20-M", "default: 100-M"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintCors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printCors(&buf, &models.CorsConfig{AllowedOrigins: "https://a.example.com, https://b.example.com", MaxAge: 600})
	out := buf.String()
	for _, want := range []string{"https://a.example.com, https://b.example.com", "Max-Age: 600"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
