package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type handleFlags struct {
	kind       string
	requestID  string
	physicalID string
	properties map[string]string
	event      string
}

func newHandleCommand(flags *globalFlags) *cobra.Command {
	hf := &handleFlags{}

	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Handle a single lifecycle event and print the reported attributes",
		Example: `  resumer handle --kind update --physical-id pipeline \
    --property StateMachine=arn:aws:states:eu-west-1:123456789012:stateMachine:deploy
  resumer handle --event event.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := hf.request(cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			resp, err := a.handler.Handle(ctx, r)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&hf.kind, "kind", "update", "Event kind (create, update, delete)")
	cmd.Flags().StringVar(&hf.requestID, "request-id", "", "Request id, generated if empty")
	cmd.Flags().StringVar(&hf.physicalID, "physical-id", "", "Physical id of the resource")
	cmd.Flags().StringToStringVar(&hf.properties, "property", nil, "Resource property as key=value, can be repeated")
	cmd.Flags().StringVar(&hf.event, "event", "", "Read a CloudFormation custom resource event from this file, - for stdin")

	return cmd
}

func (hf *handleFlags) request(stdin io.Reader) (lifecycle.Request, error) {
	if hf.event != "" {
		return readEvent(hf.event, stdin)
	}

	kind, err := parseKind(hf.kind)
	if err != nil {
		return lifecycle.Request{}, err
	}

	requestID := hf.requestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	props := make(map[string]any, len(hf.properties))
	for k, v := range hf.properties {
		props[k] = v
	}

	return lifecycle.Request{
		Kind:               kind,
		RequestID:          requestID,
		PhysicalResourceID: hf.physicalID,
		Properties:         props,
	}, nil
}

func readEvent(path string, stdin io.Reader) (lifecycle.Request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return lifecycle.Request{}, fmt.Errorf("reading event: %w", err)
	}

	var event cfn.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return lifecycle.Request{}, fmt.Errorf("parsing event: %w", err)
	}

	kind, err := parseKind(string(event.RequestType))
	if err != nil {
		return lifecycle.Request{}, err
	}

	return lifecycle.Request{
		Kind:               kind,
		RequestID:          event.RequestID,
		PhysicalResourceID: event.PhysicalResourceID,
		Properties:         event.ResourceProperties,
	}, nil
}

func parseKind(s string) (decision.Kind, error) {
	switch strings.ToLower(s) {
	case "create":
		return decision.KindCreate, nil
	case "update":
		return decision.KindUpdate, nil
	case "delete":
		return decision.KindDelete, nil
	}

	return 0, fmt.Errorf("unknown event kind %q", s)
}
