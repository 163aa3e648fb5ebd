package dispatcher

import (
	"encoding/json"

	"github.com/navigraph/navdata-interface/internal/task"
)

type eventEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func marshalEvent(event string, data any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	return json.Marshal(eventEnvelope{Event: event, Data: data})
}

func marshalResult(result task.FunctionResult) ([]byte, error) {
	return json.Marshal(result)
}
