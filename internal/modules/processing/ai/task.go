package ai

import (
	"context"
	"fmt"

	"github.com/notevault/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

const TaskTypeSummary = "ai:summary"

// TaskRunner generates summaries in the background through the Redis task
// queue, deduplicating concurrent requests for the same note and style.
type TaskRunner struct {
	svc     *Service
	taskSvc *taskqueue.Service
	notes   NoteSource
	log     *zap.Logger
}

func NewTaskRunner(svc *Service, taskSvc *taskqueue.Service, notes NoteSource, log *zap.Logger) *TaskRunner {
	return &TaskRunner{svc: svc, taskSvc: taskSvc, notes: notes, log: log}
}

func summaryDedupKey(noteID string, style Style) string {
	return fmt.Sprintf("%s:%s", noteID, style)
}

// EnqueueSummary creates a summary task, or returns the in-flight task for
// the same note and style.
func (r *TaskRunner) EnqueueSummary(ctx context.Context, noteID, userID string, style Style) (*taskqueue.Task, error) {
	// Resolve up front so a bad note id fails the request, not the task.
	if _, err := r.notes.GetText(ctx, noteID, userID); err != nil {
		return nil, err
	}

	payload := SummaryPayload{NoteID: noteID, UserID: userID, Style: style}
	task, err := r.taskSvc.Enqueue(ctx, TaskTypeSummary, payload, summaryDedupKey(noteID, style))
	if err != nil {
		return nil, err
	}

	if task.Status == taskqueue.TaskPending {
		go r.execute(context.Background(), task.ID, payload)
	}
	return task, nil
}

// Get returns a task by id.
func (r *TaskRunner) Get(ctx context.Context, id string) (*taskqueue.Task, error) {
	return r.taskSvc.GetByID(ctx, id)
}

func (r *TaskRunner) execute(ctx context.Context, taskID string, payload SummaryPayload) {
	if err := r.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		r.log.Warn("task status update failed", zap.String("task_id", taskID), zap.Error(err))
	}

	text, err := r.notes.GetText(ctx, payload.NoteID, payload.UserID)
	if err != nil {
		r.fail(ctx, taskID, "note not found or empty")
		return
	}

	result, err := r.svc.Summarize(ctx, SummaryRequest{
		UserID:  payload.UserID,
		NoteID:  payload.NoteID,
		Content: text,
		Style:   payload.Style,
	})
	if err != nil {
		e := AsError(err)
		r.fail(ctx, taskID, e.Message)
		return
	}

	if err := r.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, result, ""); err != nil {
		r.log.Warn("task status update failed", zap.String("task_id", taskID), zap.Error(err))
	}
}

func (r *TaskRunner) fail(ctx context.Context, taskID, msg string) {
	if err := r.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, msg); err != nil {
		r.log.Warn("task status update failed", zap.String("task_id", taskID), zap.Error(err))
	}
}
