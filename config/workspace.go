package config

import (
	"fmt"
	"os"
	"strconv"
)

const DefaultMaxIterations = 5

type WorkspaceConfig struct {
	GenerationsPath string
	MaxIterations   int
}

func GetWorkspaceConfig() (*WorkspaceConfig, error) {
	generationsPath := os.Getenv("GENERATIONS_PATH")
	if generationsPath == "" {
		generationsPath = "generated"
	}
	maxIterations := DefaultMaxIterations
	if raw := os.Getenv("MAX_ITERATIONS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("MAX_ITERATIONS must be a positive integer")
		}
		maxIterations = parsed
	}
	return &WorkspaceConfig{
		GenerationsPath: generationsPath,
		MaxIterations:   maxIterations,
	}, nil
}
