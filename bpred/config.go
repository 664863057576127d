package bpred

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config selects a predictor kind and fixes its structural parameters.
// All values are set at construction time; there is no runtime resizing.
type Config struct {
	// Predictor is the predictor kind: "always-taken", "bimodal",
	// "perceptron", or "mlp". Default: "perceptron".
	Predictor string `json:"predictor"`

	// PerceptronTableSize is the number of perceptron weight vectors.
	// Default: 1024.
	PerceptronTableSize uint32 `json:"perceptron_table_size"`

	// HistoryLength is the number of global history bits the perceptron
	// consumes, in [1, 63]. It also fixes the training threshold
	// theta = floor(1.93 * H) + 14. Default: 62.
	HistoryLength uint32 `json:"history_length"`

	// BimodalTableSize is the number of bimodal 2-bit counters.
	// Must be a power of 2. Default: 4096.
	BimodalTableSize uint32 `json:"bimodal_table_size"`

	// MLPWeightsFile is the path to the pre-trained network weights.
	// Required when Predictor is "mlp".
	MLPWeightsFile string `json:"mlp_weights_file"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Predictor:           KindPerceptron,
		PerceptronTableSize: DefaultPerceptronConfig().TableSize,
		HistoryLength:       DefaultPerceptronConfig().HistoryLength,
		BimodalTableSize:    DefaultBimodalConfig().TableSize,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Predictor {
	case KindAlwaysTaken, KindBimodal, KindPerceptron, KindMLP:
	default:
		return fmt.Errorf("unknown predictor kind %q", c.Predictor)
	}
	if c.PerceptronTableSize == 0 {
		return fmt.Errorf("perceptron_table_size must be > 0")
	}
	if c.HistoryLength == 0 || c.HistoryLength > 63 {
		return fmt.Errorf("history_length must be in [1, 63]")
	}
	if c.BimodalTableSize == 0 || c.BimodalTableSize&(c.BimodalTableSize-1) != 0 {
		return fmt.Errorf("bimodal_table_size must be a power of 2")
	}
	if c.Predictor == KindMLP && c.MLPWeightsFile == "" {
		return fmt.Errorf("mlp_weights_file is required for the mlp predictor")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
