package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/stock-replay/internal/config"
	"github.com/rxtech-lab/stock-replay/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

const (
	replaySchemaName   = "replay-config.json"
	downloadSchemaName = "download-config.json"
	downloadConfigName = "download.yaml"
)

// document is one generated schema with its sample config.
type document struct {
	schemaName string
	schema     func() (string, error)
	sampleName string
	sample     func() ([]byte, error)
}

func documents() []document {
	return []document{
		{
			schemaName: replaySchemaName,
			schema:     config.Schema,
			sampleName: config.FileName,
			sample: func() ([]byte, error) {
				cfg := config.Default()

				return cfg.Marshal()
			},
		},
		{
			schemaName: downloadSchemaName,
			schema:     marketdata.DownloadConfigSchema,
			sampleName: downloadConfigName,
			sample: func() ([]byte, error) {
				cfg := marketdata.DefaultDownloadConfig()
				cfg.Tickers = []string{"AAPL", "MSFT", "NVDA"}

				return yaml.Marshal(cfg)
			},
		},
	}
}

// generate writes every schema to dir, and a sample config next to it unless one already exists.
func generate(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, doc := range documents() {
		schemaJSON, err := doc.schema()
		if err != nil {
			return err
		}

		schemaPath := filepath.Join(dir, doc.schemaName)
		if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
			return err
		}

		log.Printf("Schema successfully generated at %s", schemaPath)

		samplePath := filepath.Join(dir, doc.sampleName)
		if _, err := os.Stat(samplePath); !os.IsNotExist(err) {
			continue
		}

		content, err := doc.sample()
		if err != nil {
			return err
		}

		content = append([]byte("# yaml-language-server: $schema="+doc.schemaName+"\n"), content...)
		if err := os.WriteFile(samplePath, content, 0644); err != nil {
			return err
		}

		log.Printf("Sample config successfully generated at %s", samplePath)
	}

	return nil
}

func main() {
	if err := generate("./config"); err != nil {
		log.Fatalf("Failed to generate config files: %v", err)
	}
}
