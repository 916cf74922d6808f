package lifecycle

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/cschleiden/go-resume/decision"
)

// CustomResource handles a CloudFormation custom resource event. Wrap it with cfn.LambdaWrap to run
// it as a Lambda function.
func (h *Handler) CustomResource(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	kind, err := requestKind(event.RequestType)
	if err != nil {
		return event.PhysicalResourceID, nil, err
	}

	resp, err := h.Handle(ctx, Request{
		Kind:               kind,
		RequestID:          event.RequestID,
		PhysicalResourceID: event.PhysicalResourceID,
		Properties:         event.ResourceProperties,
	})
	if err != nil {
		return event.PhysicalResourceID, nil, err
	}

	data := make(map[string]interface{}, len(resp.Data))
	for k, v := range resp.Data {
		data[k] = v
	}

	return resp.PhysicalResourceID, data, nil
}

func requestKind(t cfn.RequestType) (decision.Kind, error) {
	switch t {
	case cfn.RequestCreate:
		return decision.KindCreate, nil
	case cfn.RequestUpdate:
		return decision.KindUpdate, nil
	case cfn.RequestDelete:
		return decision.KindDelete, nil
	}

	return 0, fmt.Errorf("unknown request type %q", t)
}
