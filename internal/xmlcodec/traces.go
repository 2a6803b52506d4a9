package xmlcodec

import (
	"encoding/xml"

	"github.com/sealmit/asig/pkg/types"
)

// tracesDoc is the shape of traces.xml: the full ordered trace list.
type tracesDoc struct {
	XMLName xml.Name   `xml:"Traces"`
	Traces  []traceDoc `xml:"Trace"`
}

type traceDoc struct {
	SourceID    string `xml:"SourceID"`
	TargetID    string `xml:"TargetID"`
	Type        string `xml:"Type"`
	Description string `xml:"Description,omitempty"`
}

// EncodeTraces renders traces.xml preserving trace order.
func EncodeTraces(traces []types.Trace) ([]byte, error) {
	doc := tracesDoc{}
	for _, t := range traces {
		doc.Traces = append(doc.Traces, traceDoc{
			SourceID:    t.SourceID,
			TargetID:    t.TargetID,
			Type:        t.Type,
			Description: t.Description,
		})
	}
	return marshal(doc)
}

// DecodeTraces parses traces.xml.
func DecodeTraces(data []byte) ([]types.Trace, error) {
	var doc tracesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, corrupt("%v", err)
	}

	traces := make([]types.Trace, 0, len(doc.Traces))
	for i, t := range doc.Traces {
		trace := types.Trace{
			SourceID:    t.SourceID,
			TargetID:    t.TargetID,
			Type:        t.Type,
			Description: t.Description,
		}
		if err := trace.Validate(); err != nil {
			return nil, corrupt("trace %d: %v", i, err)
		}
		traces = append(traces, trace)
	}
	return traces, nil
}
