// Package tasks runs background work on a fixed worker pool.
//
// Every submission returns a *Task handle whose completion can be awaited, so
// callers and tests never race a detached goroutine:
//
//	t := queue.Submit("insight", meetingID, func(ctx context.Context) error {
//	    return insights.Run(ctx, meetingID)
//	})
//	err := t.Wait(ctx)
//
// Submissions with the same name and non-empty key coalesce while one is
// pending or running; the second caller receives the in-flight handle.
package tasks
