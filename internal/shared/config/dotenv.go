package config

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// loadEnvFiles applies KEY=VALUE pairs from the given files and returns the
// ones that were read. Variables already in the environment are kept, and a
// missing file is skipped silently.
func loadEnvFiles(paths ...string) []string {
	var loaded []string
	for _, path := range paths {
		err := godotenv.Load(path)
		switch {
		case err == nil:
			loaded = append(loaded, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Printf("config: skipping env file %s: %v", path, err)
		}
	}
	return loaded
}
