package config

import "os"

type RendererConfig struct {
	Bin     string
	Quality string
}

func GetRendererConfig() (*RendererConfig, error) {
	bin := os.Getenv("MANIM_BIN")
	if bin == "" {
		bin = "manim"
	}
	quality := os.Getenv("MANIM_QUALITY")
	if quality == "" {
		quality = "-ql"
	}
	return &RendererConfig{
		Bin:     bin,
		Quality: quality,
	}, nil
}
