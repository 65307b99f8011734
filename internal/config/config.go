// Package config decodes the runner's JSON/TOML/XML configuration file
// (§6.4): the stop/step interval, an FMU list with per-instance parameters,
// and a cross-FMU connection list, plus time-with-unit parsing shared by
// both the config file and the CLI's --step/--stop flags.
package config

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is the parsed form of the §6.4 configuration schema, independent
// of which file format it came from.
type Document struct {
	Stop        string       `json:"stop" toml:"stop" xml:"stop" yaml:"stop"`
	Step        string       `json:"step" toml:"step" xml:"step" yaml:"step"`
	ExtractPath string       `json:"extractpath" toml:"extractpath" xml:"extractpath" yaml:"extractpath"`
	FMUs        []FMUEntry   `json:"fmus" toml:"fmus" xml:"fmus>fmu" yaml:"fmus"`
	Connections []Connection `json:"-" toml:"-" xml:"-" yaml:"-"`

	// RawConnections carries the format-specific connection encoding
	// (a list of single-key maps in JSON/TOML/YAML, repeated elements in
	// XML) until Load normalizes it into Connections.
	RawConnections []map[string]string `json:"connections" toml:"connections" xml:"-" yaml:"connections"`
}

// FMUEntry is one entry of the "fmus" sequence (§6.4).
type FMUEntry struct {
	FMU        string      `json:"fmu" toml:"fmu" xml:"fmu,attr" yaml:"fmu"`
	Name       string      `json:"name" toml:"name" xml:"name,attr" yaml:"name"`
	Config     string      `json:"config" toml:"config" xml:"config,attr" yaml:"config"`
	StepTime   string      `json:"steptime" toml:"steptime" xml:"steptime,attr" yaml:"steptime"`
	StartTime  string      `json:"starttime" toml:"starttime" xml:"starttime,attr" yaml:"starttime"`
	Parameters []Parameter `json:"parameters" toml:"parameters" xml:"-" yaml:"parameters"`
}

// Parameter is one entry of an FMU's "parameters" sequence: either a
// `{field, value}` pair or a single `{name: value}` object (§6.4).
type Parameter struct {
	Field string
	Value string
}

// UnmarshalYAML accepts both parameter shapes, mirroring UnmarshalJSON.
func (p *Parameter) UnmarshalYAML(value *yaml.Node) error {
	var explicit struct {
		Field string `yaml:"field"`
		Value string `yaml:"value"`
	}
	if err := value.Decode(&explicit); err == nil && explicit.Field != "" {
		p.Field = explicit.Field
		p.Value = explicit.Value
		return nil
	}

	var generic map[string]string
	if err := value.Decode(&generic); err != nil {
		return errors.Wrap(err, "parameter entry")
	}
	for k, v := range generic {
		p.Field = k
		p.Value = v
		break
	}
	return nil
}

// Connection is one `{fromEndpoint: toEndpoint}` pair of the top-level
// "connections" sequence (§6.4).
type Connection struct {
	From string
	To   string
}

// UnmarshalJSON accepts both parameter shapes: {"field":"x","value":1} and
// {"x":1}.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var explicit struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &explicit); err == nil && explicit.Field != "" {
		p.Field = explicit.Field
		p.Value = scalarString(explicit.Value)
		return nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return errors.Wrap(err, "parameter entry")
	}
	for k, v := range generic {
		p.Field = k
		p.Value = scalarString(v)
		break
	}
	return nil
}

func scalarString(raw json.RawMessage) string {
	trimmed := strings.Trim(string(raw), `"`)
	return trimmed
}

// Load reads and decodes a §6.4 config file from path, picking the format
// by extension (.json, .toml, .xml, .yaml or .yml).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(err, "parse JSON config %s", path)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, errors.Wrapf(err, "parse TOML config %s", path)
		}
	case ".xml":
		var raw xmlDocument
		if err := xml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, "parse XML config %s", path)
		}
		doc = raw.toDocument()
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(err, "parse YAML config %s", path)
		}
	default:
		return nil, errors.Errorf("config %s: unrecognized extension (want .json, .toml, .xml, or .yaml)", path)
	}

	doc.Connections = normalizeConnections(doc.RawConnections)
	return &doc, nil
}

func normalizeConnections(raw []map[string]string) []Connection {
	connections := make([]Connection, 0, len(raw))
	for _, entry := range raw {
		for from, to := range entry {
			connections = append(connections, Connection{From: from, To: to})
		}
	}
	return connections
}

// xmlDocument mirrors Document using element/attribute naming, per §6.4
// "XML follows the same schema via element/attribute naming".
type xmlDocument struct {
	XMLName     xml.Name        `xml:"config"`
	Stop        string          `xml:"stop"`
	Step        string          `xml:"step"`
	ExtractPath string          `xml:"extractpath"`
	FMUs        []xmlFMUEntry   `xml:"fmus>fmu"`
	Connections []xmlConnection `xml:"connections>connection"`
}

type xmlFMUEntry struct {
	FMU        string           `xml:"fmu,attr"`
	Name       string           `xml:"name,attr"`
	Config     string           `xml:"config,attr"`
	StepTime   string           `xml:"steptime,attr"`
	StartTime  string           `xml:"starttime,attr"`
	Parameters []xmlParameter   `xml:"parameter"`
}

type xmlParameter struct {
	Field string `xml:"field,attr"`
	Value string `xml:"value,attr"`
}

type xmlConnection struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
}

func (x xmlDocument) toDocument() Document {
	doc := Document{Stop: x.Stop, Step: x.Step, ExtractPath: x.ExtractPath}
	for _, f := range x.FMUs {
		entry := FMUEntry{FMU: f.FMU, Name: f.Name, Config: f.Config, StepTime: f.StepTime, StartTime: f.StartTime}
		for _, p := range f.Parameters {
			entry.Parameters = append(entry.Parameters, Parameter{Field: p.Field, Value: p.Value})
		}
		doc.FMUs = append(doc.FMUs, entry)
	}
	for _, c := range x.Connections {
		doc.Connections = append(doc.Connections, Connection{From: c.From, To: c.To})
	}
	return doc
}

// ParseTime parses a time-with-unit value as used by --step/--stop and the
// §6.4 config file ("10s", "100ms", or a bare number of seconds). An empty
// string yields 0, so callers can treat it as "unset" and fall through
// their own fallback chain.
func ParseTime(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return seconds, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "parse time value %q", value)
	}
	return d.Seconds(), nil
}

// Field finds a parameter by field name (case-sensitive) among entries,
// returning ok=false if absent.
func (e FMUEntry) Field(name string) (string, bool) {
	for _, p := range e.Parameters {
		if p.Field == name {
			return p.Value, true
		}
	}
	return "", false
}

// String implements fmt.Stringer for debug logging.
func (c Connection) String() string {
	return fmt.Sprintf("%s->%s", c.From, c.To)
}
