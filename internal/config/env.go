package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var envFileNames = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from each directory in order.
// Existing process environment variables are never overwritten. It returns
// the files that were loaded.
func loadEnvFiles(dirs ...string) ([]string, error) {
	var loaded []string
	seen := map[string]bool{}
	for _, dir := range dirs {
		for _, name := range envFileNames {
			path := filepath.Join(dir, name)
			abs, err := filepath.Abs(path)
			if err == nil {
				if seen[abs] {
					continue
				}
				seen[abs] = true
			}
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				return loaded, err
			}
			loaded = append(loaded, path)
		}
	}
	return loaded, nil
}
