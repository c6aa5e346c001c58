// Package config reads the pipeline configuration file. One YAML document
// covers every stage; each command reads the section it needs.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/podscript/wrangle/pkg/wrangle/reruns"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

// Pipeline holds settings shared by the corpus stages.
type Pipeline struct {
	SourceDir    string   `yaml:"source_dir"`
	WorkDir      string   `yaml:"work_dir"`
	Marker       string   `yaml:"marker"`
	Fields       []string `yaml:"fields"`
	Contractions int      `yaml:"contractions"`
	Tasks        int      `yaml:"tasks"`
}

// Train holds settings for the external GloVe tools.
type Train struct {
	ToolDir    string  `yaml:"tool_dir"`
	VectorSize int     `yaml:"vector_size"`
	Window     int     `yaml:"window"`
	MinCount   int     `yaml:"min_count"`
	Iterations int     `yaml:"iterations"`
	Memory     float64 `yaml:"memory"`
	Threads    int     `yaml:"threads"`
	XMax       int     `yaml:"x_max"`
}

// Index holds settings for the repetition index store.
type Index struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	Path   string `yaml:"path"`   // sqlite database file
	DSN    string `yaml:"dsn"`    // postgres connection string
	MinRun int    `yaml:"min_run"`
}

// File is the top-level configuration document.
type File struct {
	Pipeline Pipeline `yaml:"pipeline"`
	Train    Train    `yaml:"train"`
	Index    Index    `yaml:"index"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Pipeline: Pipeline{
			Marker:       transform.DefaultMarker,
			Fields:       []string{transform.FieldText, transform.FieldURL},
			Contractions: transform.ContractionsStatic,
			Tasks:        1,
		},
		Train: Train{
			VectorSize: 300,
			Window:     15,
			MinCount:   5,
			Iterations: 15,
			Memory:     4.0,
			Threads:    8,
			XMax:       10,
		},
		Index: Index{
			Driver: "sqlite",
			MinRun: reruns.DefaultMinRun,
		},
	}
}

// Load reads a YAML configuration file. Fields absent from the document
// keep their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}

	return f, nil
}

// Stoplist is a function-word list kept out of frequency reports.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
