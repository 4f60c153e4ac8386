package shared

// Asynq task type names shared between the API and the worker.
const (
	TypeCoverBackfill = "book:cover_backfill"
)
