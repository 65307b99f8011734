package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const jsonConfig = `{
  "stop": "10s",
  "step": "0.1s",
  "fmus": [
    {"fmu": "a.fmu", "name": "a", "parameters": [{"field": "g", "value": "9.81"}, {"k": "3"}]},
    {"fmu": "b.fmu", "name": "b", "steptime": "0.05s"}
  ],
  "connections": [{"a.out": "b.in"}]
}`

func TestLoadJSON(t *testing.T) {
	doc, err := Load(writeConfig(t, "cfg.json", jsonConfig))
	require.NoError(t, err)

	require.Equal(t, "10s", doc.Stop)
	require.Len(t, doc.FMUs, 2)
	require.Equal(t, "a", doc.FMUs[0].Name)
	require.Len(t, doc.FMUs[0].Parameters, 2)

	g, ok := doc.FMUs[0].Field("g")
	require.True(t, ok)
	require.Equal(t, "9.81", g)

	k, ok := doc.FMUs[0].Field("k")
	require.True(t, ok)
	require.Equal(t, "3", k)

	require.Len(t, doc.Connections, 1)
	require.Equal(t, Connection{From: "a.out", To: "b.in"}, doc.Connections[0])
}

const tomlConfig = `
stop = "10s"
step = "0.1s"

[[fmus]]
fmu = "a.fmu"
name = "a"

[[connections]]
"a.out" = "b.in"
`

func TestLoadTOML(t *testing.T) {
	doc, err := Load(writeConfig(t, "cfg.toml", tomlConfig))
	require.NoError(t, err)
	require.Equal(t, "10s", doc.Stop)
	require.Len(t, doc.FMUs, 1)
	require.Equal(t, "a", doc.FMUs[0].Name)
	require.Equal(t, []Connection{{From: "a.out", To: "b.in"}}, doc.Connections)
}

const xmlConfig = `<config>
  <stop>10s</stop>
  <step>0.1s</step>
  <fmus>
    <fmu fmu="a.fmu" name="a" steptime="0.05s">
      <parameter field="g" value="9.81"/>
    </fmu>
  </fmus>
  <connections>
    <connection from="a.out" to="b.in"/>
  </connections>
</config>`

func TestLoadXML(t *testing.T) {
	doc, err := Load(writeConfig(t, "cfg.xml", xmlConfig))
	require.NoError(t, err)
	require.Equal(t, "10s", doc.Stop)
	require.Len(t, doc.FMUs, 1)
	require.Equal(t, "a", doc.FMUs[0].Name)
	g, ok := doc.FMUs[0].Field("g")
	require.True(t, ok)
	require.Equal(t, "9.81", g)
	require.Equal(t, []Connection{{From: "a.out", To: "b.in"}}, doc.Connections)
}

const yamlConfig = `
stop: 10s
step: 0.1s
fmus:
  - fmu: a.fmu
    name: a
    parameters:
      - field: g
        value: "9.81"
connections:
  - a.out: b.in
`

func TestLoadYAML(t *testing.T) {
	doc, err := Load(writeConfig(t, "cfg.yaml", yamlConfig))
	require.NoError(t, err)
	require.Equal(t, "10s", doc.Stop)
	require.Len(t, doc.FMUs, 1)
	g, ok := doc.FMUs[0].Field("g")
	require.True(t, ok)
	require.Equal(t, "9.81", g)
	require.Equal(t, []Connection{{From: "a.out", To: "b.in"}}, doc.Connections)
}

func TestLoadUnrecognizedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "cfg.ini", "stop=10"))
	require.Error(t, err)
}

func TestParseTimeBareNumberAndUnitSuffix(t *testing.T) {
	seconds, err := ParseTime("2.5")
	require.NoError(t, err)
	require.Equal(t, 2.5, seconds)

	seconds, err = ParseTime("100ms")
	require.NoError(t, err)
	require.Equal(t, 0.1, seconds)

	seconds, err = ParseTime("")
	require.NoError(t, err)
	require.Equal(t, 0.0, seconds)

	_, err = ParseTime("not-a-time")
	require.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	require.Equal(t, "a->b", Connection{From: "a", To: "b"}.String())
}
