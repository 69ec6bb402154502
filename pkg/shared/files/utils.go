package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}

	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// ReadOrgList reads organization names from a file, one per line. Blank lines
// and lines starting with '#' are skipped.
func ReadOrgList(path string) ([]string, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	if err := ValidatePath(expanded); err != nil {
		return nil, err
	}

	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", expanded, err)
	}
	defer file.Close()

	var orgs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		orgs = append(orgs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", expanded, err)
	}

	return orgs, nil
}
