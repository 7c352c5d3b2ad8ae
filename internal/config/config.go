package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Source struct {
	URI         string   `yaml:"uri"`
	Database    string   `yaml:"database"`
	Collections []string `yaml:"collections"`
	Limit       int64    `yaml:"limit"`
	BatchSize   int32    `yaml:"batch_size"`
}

type Transform struct {
	MaxDepth int `yaml:"max_depth"`
}

type Preserver struct {
	Type    string `yaml:"type"`
	TwoPass bool   `yaml:"two_pass"`
}

type Local struct {
	Path string `yaml:"path"`
}

type S3 struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type GCS struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type Repository struct {
	Type  string `yaml:"type"`
	Local Local  `yaml:"local"`
	S3    S3     `yaml:"s3"`
	GCS   GCS    `yaml:"gcs"`
}

type Exporter struct {
	Name       string     `yaml:"name"`
	Source     Source     `yaml:"source"`
	Transform  Transform  `yaml:"transform"`
	Preserver  Preserver  `yaml:"preserver"`
	Repository Repository `yaml:"repository"`
}

type Scribe struct {
	Global   Global   `yaml:"global"`
	Exporter Exporter `yaml:"exporter"`
}

func NewScribeFromFile(fpath string) (*Scribe, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var scribe Scribe
	if err := yaml.Unmarshal(bs, &scribe); err != nil {
		return nil, err
	}

	return &scribe, nil
}
