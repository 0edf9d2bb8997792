package report

import (
	"encoding/json"

	"github.com/ppiankov/archivecost/internal/cost"
)

type jsonEnvelope struct {
	Schema string `json:"$schema"`
	Data
	FallbackUsed []cost.Provider `json:"fallback_used,omitempty"`
	Recorded     *bool           `json:"recorded,omitempty"`
}

// Generate writes the archivecost/v1 JSON envelope.
func (r *JSONReporter) Generate(data Data) error {
	env := jsonEnvelope{
		Schema: "archivecost/v1",
		Data:   data,
	}
	if data.Estimate != nil {
		env.FallbackUsed = data.Estimate.FallbackUsed()
		recorded := data.Estimate.Recorded()
		env.Recorded = &recorded
	}

	enc := json.NewEncoder(r.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
