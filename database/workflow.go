/*
Copyright 2024 Tonlage Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

// CreateWorkflow inserts a new workflow record with all completion flags
// false. The requirement flags are fixed here and never change afterwards.
func (d Datasource) CreateWorkflow(ctx context.Context, genreRequired, ytRequired bool) (string, error) {
	workflowID := model.GenerateUUIDWithSuffix("wfl")

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO workflow_state (workflow_id, genre_required, yt_required)
		VALUES ($1, $2, $3)
	`, workflowID, genreRequired, ytRequired)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create workflow", err)
	}
	return workflowID, nil
}

// SetWorkflowFlag raises one completion flag. Flags only ever go from
// false to true, so setting an already-set flag is a harmless no-op, and
// two stages racing on different flags cannot clobber each other.
func (d Datasource) SetWorkflowFlag(ctx context.Context, workflowID string, flag string) error {
	if !model.ValidWorkflowFlag(flag) {
		return apierror.NewAPIError(apierror.ErrBadRequest,
			fmt.Sprintf("Unknown workflow flag: %s", flag), nil)
	}

	res, err := d.Conn.ExecContext(ctx, fmt.Sprintf(`
		UPDATE workflow_state SET %s = TRUE WHERE workflow_id = $1
	`, flag), workflowID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to set workflow flag", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read flag update result", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound,
			fmt.Sprintf("Workflow %s not found", workflowID), nil)
	}
	return nil
}

func (d Datasource) GetWorkflow(ctx context.Context, workflowID string) (*model.Workflow, error) {
	workflow := model.Workflow{}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT workflow_id, init_done, genre_done, yt_done,
			genre_required, yt_required, created_at
		FROM workflow_state
		WHERE workflow_id = $1
	`, workflowID)

	err := row.Scan(
		&workflow.WorkflowID, &workflow.InitDone, &workflow.GenreDone, &workflow.YtDone,
		&workflow.GenreRequired, &workflow.YtRequired, &workflow.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound,
				fmt.Sprintf("Workflow %s not found", workflowID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve workflow", err)
	}
	return &workflow, nil
}
