package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repasses-dev/repasses/internal/commands"
	"github.com/repasses-dev/repasses/internal/config"
)

const fixture = `municipio;exercicio;vl_pago;razao_social;funcao_de_governo
Cotia;2021;100;Hospital A;Saúde
Cotia;2021;50;Escola B;Educação
Cotia;2022;300;Hospital A;Saúde
Cotia;2022;abc;Hospital C;Saúde
Itapevi;2021;1000;Clube D;Cultura
Itapevi;2022;400;Hospital A;Saúde
`

// clearEnv keeps the developer's environment out of config resolution.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvSource, config.EnvFormat, config.EnvLogLevel, config.EnvCredentials} {
		t.Setenv(k, "")
	}
}

// newProject writes a CSV source and a config pointing at it, returning
// the config path.
func newProject(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repasses.csv"), []byte(fixture), 0o644))

	cfg := config.Default()
	cfg.Source.Path = "repasses.csv"
	cfg.Log.Level = "error"
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, config.Save(path, cfg))
	return path
}

func runRepasses(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
