package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskPurgeDecisionTokens = "decisions.tokens.purge"

// defaultPurgeGrace is how long an expired token row is kept before deletion.
const defaultPurgeGrace = time.Hour

type PurgeDecisionTokensPayload struct {
	GraceSeconds int64 `json:"graceSeconds"`
}

func (p PurgeDecisionTokensPayload) Grace() time.Duration {
	if p.GraceSeconds <= 0 {
		return defaultPurgeGrace
	}
	return time.Duration(p.GraceSeconds) * time.Second
}

func NewPurgeDecisionTokensTask(payload PurgeDecisionTokensPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeDecisionTokens, data), nil
}

func ParsePurgeDecisionTokensPayload(task *asynq.Task) (PurgeDecisionTokensPayload, error) {
	var payload PurgeDecisionTokensPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PurgeDecisionTokensPayload{}, err
	}
	return payload, nil
}
