package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "leapgrid", cmd.Use)
	for _, flag := range []string{"config", "state", "driver", "dsn", "ticker", "company", "source", "base-url", "source-file", "env", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantDebug bool
		wantJSON  bool
	}{
		{name: "text info", cfg: &config.Config{OutputFormat: "auto"}},
		{name: "verbose", cfg: &config.Config{OutputFormat: "text", Verbose: true}, wantDebug: true},
		{name: "json", cfg: &config.Config{OutputFormat: "json"}, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			logger := newLogger(buf, tt.cfg)

			logger.Debug("debug line")
			logger.Info("refreshed", "ticker", "ACME")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug line"))
			if tt.wantJSON {
				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
				assert.Equal(t, "ACME", rec["ticker"])
			} else {
				assert.Contains(t, out, "ticker=ACME")
			}
		})
	}
}

func TestContextAccessors_Defaults(t *testing.T) {
	ctx := context.Background()

	cfg := GetConfig(ctx)
	assert.Equal(t, config.DefaultDriver, cfg.Driver)
	assert.Equal(t, config.DefaultSourceKind, cfg.Source.Kind)
	assert.NoError(t, cfg.Validate())

	r := GetRenderer(ctx)
	require.NotNil(t, r)
	assert.Contains(t, []output.Mode{output.ModeText, output.ModeMarkdown}, r.EffectiveMode())
}
