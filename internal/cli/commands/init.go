package commands

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed all:templates
var templateFS embed.FS

// examplePayload is the payload file written by init --example.
const examplePayload = "acme.json"

// starterConfig is the leapgrid.yaml written by init.
type starterConfig struct {
	StatePath string         `yaml:"state_path"`
	Driver    string         `yaml:"driver"`
	Output    string         `yaml:"output"`
	Locale    string         `yaml:"locale"`
	Source    starterSource  `yaml:"source"`
	Query     starterQuery   `yaml:"query"`
	UI        starterUI      `yaml:"ui"`
	Grid      map[string]any `yaml:"grid"`
}

type starterSource struct {
	Kind     string `yaml:"kind"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	File     string `yaml:"file,omitempty"`
	Timeout  string `yaml:"timeout"`
}

type starterQuery struct {
	Ticker string `yaml:"ticker"`
}

type starterUI struct {
	Port      int    `yaml:"port"`
	AutoOpen  bool   `yaml:"auto_open"`
	Watch     bool   `yaml:"watch"`
	ImportDir string `yaml:"import_dir"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new LeapGrid project",
		Long: `Initialize a new LeapGrid project with a starter configuration.

This creates:
  - leapgrid.yaml configuration file
  - imports/ directory watched by 'leapgrid serve --watch'

Use --example to also write a sample company payload and point the
file source at it, so 'leapgrid render' works without a backend.`,
		Example: `  # Initialize in current directory
  leapgrid init

  # Initialize with a sample company
  leapgrid init --example

  # Initialize in a new directory
  leapgrid init my-grid --example

  # Force overwrite existing config
  leapgrid init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			mode := output.ModeAuto
			if cfg := config.GetCurrentConfig(); cfg != nil {
				mode = output.Mode(cfg.OutputFormat)
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Write a sample company payload and use it as the source")

	return cmd
}

func runInit(r *output.Renderer, dir string, force, example bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.DefaultConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.DefaultConfigFileName)
	}

	if err := os.MkdirAll(filepath.Join(dir, config.DefaultImportDir), 0750); err != nil {
		return fmt.Errorf("failed to create import directory: %w", err)
	}

	starter := newStarterConfig(example)
	data, err := marshalStarterConfig(starter)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(config.DefaultConfigFileName, "success", "")
	r.StatusLine(config.DefaultImportDir+"/", "success", "")

	if example {
		if err := copyTemplate("example", dir, force); err != nil {
			return fmt.Errorf("failed to write example payload: %w", err)
		}
		r.StatusLine(examplePayload, "success", "")
	}

	r.Println("")
	r.Success("LeapGrid project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if example {
		r.Println("  leapgrid render   Print the sample company")
		r.Println("  leapgrid browse   Explore it in the terminal")
		r.Println("  leapgrid serve    Open it in the browser")
	} else {
		r.Println("  1. Set source.base_url or drop workbooks into imports/")
		r.Println("  2. Run 'leapgrid import <file.xlsx>' to load a company")
		r.Println("  3. Run 'leapgrid render --ticker <TICKER>' to view it")
	}

	return nil
}

func newStarterConfig(example bool) starterConfig {
	starter := starterConfig{
		StatePath: config.DefaultStateFile,
		Driver:    config.DefaultDriver,
		Output:    config.DefaultOutput,
		Locale:    config.DefaultLocale,
		Source: starterSource{
			Kind:    config.DefaultSourceKind,
			Timeout: config.DefaultSourceTimeout.String(),
		},
		UI: starterUI{
			Port:      config.DefaultPort,
			AutoOpen:  true,
			ImportDir: config.DefaultImportDir,
		},
		Grid: map[string]any{
			"column_widths": map[string]int{"name": 250},
			"currencies":    map[string]string{"Dollar": "USD"},
		},
	}
	if example {
		starter.Source.Kind = "file"
		starter.Source.File = examplePayload
		starter.Query.Ticker = "ACME"
	}
	return starter
}

// marshalStarterConfig encodes the config with a leading comment.
func marshalStarterConfig(starter starterConfig) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(starter); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	node.HeadComment = "LeapGrid configuration.\nEnvironment variables override values: LEAPGRID_SOURCE__BASE_URL sets source.base_url."

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// copyTemplate copies an embedded template directory to the target path.
func copyTemplate(templateName, targetDir string, force bool) error {
	root := "templates/" + templateName

	entries, err := templateFS.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		targetPath := filepath.Join(targetDir, e.Name())
		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				continue
			}
		}
		content, err := templateFS.ReadFile(root + "/" + e.Name())
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}
	}
	return nil
}
