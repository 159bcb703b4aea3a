package sql

import (
	"database/sql"
	"errors"

	"github.com/results-hub/results-hub/pkg/api"
)

// SaveProject inserts the project or replaces the stored one with the same id.
func (s *SQLStorage) SaveProject(project *api.Project) error {
	query, args := s.statements.CreateProjectUpsertStatement(project)
	if _, err := s.executor(nil).Exec(query, args...); err != nil {
		s.logger.Error("Failed to save project", "id", project.ID, "error", err.Error())
		return databaseError("save project", project.ID, err)
	}
	return nil
}

// GetProject returns nil without an error when the project does not exist.
func (s *SQLStorage) GetProject(id int) (*api.Project, error) {
	query, args := s.statements.CreateProjectGetStatement(id)
	project, err := scanProject(s.executor(nil).QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, databaseError("get project", id, err)
	}
	return project, nil
}

func (s *SQLStorage) GetProjects() ([]api.Project, error) {
	rows, err := s.executor(nil).Query(s.statements.CreateProjectListStatement())
	if err != nil {
		return nil, queryError(TABLE_PROJECTS, err)
	}
	defer rows.Close()

	projects := make([]api.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, queryError(TABLE_PROJECTS, err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(TABLE_PROJECTS, err)
	}
	return projects, nil
}

func scanProject(row rowScanner) (*api.Project, error) {
	var project api.Project
	if err := row.Scan(&project.ID, &project.ProjectName, &project.RobotType, &project.RobotToken, &project.RobotSecret); err != nil {
		return nil, err
	}
	return &project, nil
}
