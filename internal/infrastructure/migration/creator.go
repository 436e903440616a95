package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
)

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}
-- Driver: {{.Driver}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} (rollback)
-- Created: {{.Timestamp}}
-- Driver: {{.Driver}}

`

// Drivers lists the migration directories kept side by side under the root
var Drivers = []string{config.DriverSQLite, config.DriverPostgres}

// MigrationFile describes one generated up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Driver      string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair for every driver under root,
// numbered one past the highest existing version.
func CreateMigration(root, name, description string) ([]MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	next, err := nextVersion(root)
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%06d", next)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	created := make([]MigrationFile, 0, len(Drivers))
	for _, driver := range Drivers {
		dir := filepath.Join(root, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}
		base := version + "_" + slug
		mf := MigrationFile{
			Version:     version,
			Name:        name,
			Description: description,
			Driver:      driver,
			Timestamp:   timestamp,
			UpPath:      filepath.Join(dir, base+".up.sql"),
			DownPath:    filepath.Join(dir, base+".down.sql"),
		}
		if err := writeTemplate(mf.UpPath, migrationUpTemplate, mf); err != nil {
			return nil, err
		}
		if err := writeTemplate(mf.DownPath, migrationDownTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			return nil, err
		}
		created = append(created, mf)
	}
	return created, nil
}

func nextVersion(root string) (int, error) {
	highest := 0
	for _, driver := range Drivers {
		names, err := ListMigrations(filepath.Join(root, driver))
		if err != nil {
			return 0, err
		}
		for _, n := range names {
			prefix, _, _ := strings.Cut(n, "_")
			if v, err := strconv.Atoi(prefix); err == nil && v > highest {
				highest = v
			}
		}
	}
	return highest + 1, nil
}

func writeTemplate(path, tmplContent string, data MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	return strings.TrimSuffix(string(result), "_")
}

// ListMigrations returns the sorted base names of the up migrations in dir
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
