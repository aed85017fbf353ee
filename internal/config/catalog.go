package config

import (
	"fmt"
	"os"

	"github.com/spetersoncode/mediagen"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout of a custom model catalog:
//
//	models:
//	  - id: my-image-model
//	    name: Studio gateway
//	    api: gemini
//	    base_url: https://gateway.internal
//	    endpoint: /v1/generate
//	    default_aspect_ratio: "1:1"
//	    aspect_ratios: ["1:1", "16:9"]
type catalogFile struct {
	Models []catalogModel `yaml:"models"`
}

type catalogModel struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	API                string   `yaml:"api"`
	BaseURL            string   `yaml:"base_url"`
	Endpoint           string   `yaml:"endpoint"`
	DefaultAspectRatio string   `yaml:"default_aspect_ratio"`
	AspectRatios       []string `yaml:"aspect_ratios"`
}

// LoadCatalog reads custom model descriptors from a YAML file.
func LoadCatalog(path string) ([]*mediagen.ResolvedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes custom model descriptors from YAML.
func ParseCatalog(data []byte) ([]*mediagen.ResolvedModel, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	models := make([]*mediagen.ResolvedModel, 0, len(file.Models))
	for i, cm := range file.Models {
		if cm.ID == "" {
			return nil, fmt.Errorf("catalog model %d: id is required", i)
		}

		api := mediagen.API(cm.API)
		switch api {
		case "", mediagen.APIGemini, mediagen.APIOpenAIImages:
		default:
			return nil, fmt.Errorf("catalog model %q: unknown api %q", cm.ID, cm.API)
		}

		m := &mediagen.ResolvedModel{
			ID:                 cm.ID,
			Name:               cm.Name,
			API:                api,
			Endpoint:           cm.Endpoint,
			BaseURL:            cm.BaseURL,
			DefaultAspectRatio: mediagen.AspectRatio(cm.DefaultAspectRatio),
		}
		for _, r := range cm.AspectRatios {
			m.SupportedAspectRatios = append(m.SupportedAspectRatios, mediagen.AspectRatio(r))
		}
		models = append(models, m)
	}
	return models, nil
}
