package main

import (
	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

func newLambdaCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as the Lambda function backing a CloudFormation custom resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}

			a.logger.Info("Starting Lambda handler", "backend", a.cfg.Backend.Kind)

			// Does not return
			lambda.Start(cfn.LambdaWrap(a.handler.CustomResource))

			return nil
		},
	}
}
