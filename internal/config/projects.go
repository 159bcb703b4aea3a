package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/results-hub/results-hub/pkg/api"
	"go.yaml.in/yaml/v2"
)

const projectsDir = "projects"

// LoadProjectConfigs reads every projects/*.yaml file below configDir (or the
// first default lookup path that has a projects directory). Files without a
// positive id are skipped.
func LoadProjectConfigs(logger *slog.Logger, configDir string) (map[int]api.Project, error) {
	projects := make(map[int]api.Project)

	dir := ""
	for _, candidate := range configDirs(configDir) {
		path := filepath.Join(candidate, projectsDir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			dir = path
			break
		}
	}
	if dir == "" {
		logger.Info("No projects directory found", "dirs", strings.Join(configDirs(configDir), ","))
		return projects, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return projects, nil
		}
		return nil, fmt.Errorf("failed to read projects directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		file := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read project file %s: %w", file, err)
		}
		project := api.Project{}
		if err := yaml.Unmarshal(content, &project); err != nil {
			return nil, fmt.Errorf("failed to parse project file %s: %w", file, err)
		}
		if project.ID <= 0 {
			logger.Warn("Skipping project without an id", "file", file)
			continue
		}
		if project.ProjectName == "" {
			project.ProjectName = fmt.Sprintf("project-%d", project.ID)
		}
		if existing, ok := projects[project.ID]; ok {
			logger.Warn("Duplicate project id, the later file wins", "id", project.ID, "previous", existing.ProjectName, "file", file)
		}
		projects[project.ID] = project
	}

	logger.Info("Loaded project configs", "count", len(projects), "dir", dir)
	return projects, nil
}
