package simulator

import (
	"fmt"
	"math/rand"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// TaskNames are the task kinds the simulator reports durations for.
var TaskNames = []string{"plan", "execute", "review", "summarize"}

// ErrorTypes are the error kinds the simulator occasionally reports.
var ErrorTypes = []string{"timeout", "tool_failure", "rate_limited"}

// errorRate is the fraction of batches that include an error record.
const errorRate = 0.1

// AgentBatch builds one batch of simulated telemetry for an agent.
//
// Every batch carries one task duration; roughly one in ten also carries an
// error record, plus a custom queue-depth gauge.
func AgentBatch(agentID string) []models.MetricsDTO {
	task := TaskNames[rand.Intn(len(TaskNames))]
	duration := 50 + rand.Float64()*450
	queueDepth := float64(rand.Intn(20))

	batch := []models.MetricsDTO{
		{AgentID: agentID, Task: task, Value: &duration},
		{Metric: fmt.Sprintf("agent.%s.queue_depth", agentID), Value: &queueDepth},
	}

	if rand.Float64() < errorRate {
		batch = append(batch, models.MetricsDTO{
			AgentID: agentID,
			Error:   ErrorTypes[rand.Intn(len(ErrorTypes))],
		})
	}
	return batch
}
