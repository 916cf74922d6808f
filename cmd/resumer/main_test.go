package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/graph"
	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/cschleiden/go-resume/store"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const definition = `{
  "StartAt": "Build",
  "States": {
    "Build": {"Type": "Task", "Resource": "arn:build", "Next": "Deploy"},
    "Deploy": {"Type": "Task", "Resource": "arn:deploy", "End": true}
  }
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func Test_Augment_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines", "deploy", "main.asl.json")
	writeFile(t, path, definition)

	_, err := run(t, "", "augment", filepath.Join(dir, "**", "*.asl.json"), "--write")
	require.NoError(t, err)

	out, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, graph.DispatcherID, gjson.GetBytes(out, "StartAt").String())
	require.Equal(t, "Choice", gjson.GetBytes(out, "States."+graph.DispatcherID+".Type").String())
	require.True(t, gjson.GetBytes(out, "States.Deploy").Exists())
}

func Test_Augment_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.asl.json")
	writeFile(t, path, definition)

	out, err := run(t, "", "augment", path)
	require.NoError(t, err)
	require.Equal(t, graph.DispatcherID, gjson.Get(out, "StartAt").String())

	// Unchanged on disk
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, definition, string(raw))
}

func Test_Augment_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "", "augment", filepath.Join(dir, "*.json"))
	require.ErrorContains(t, err, "no definitions match")

	writeFile(t, filepath.Join(dir, "broken.json"), `{"States": {}}`)
	_, err = run(t, "", "augment", filepath.Join(dir, "*.json"))
	require.ErrorIs(t, err, graph.ErrInvalidDefinition)
}

func writeAppConfig(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "resumer.yaml")
	writeFile(t, path, `
backend:
  kind: memory
store:
  dsn: sqlite://`+filepath.Join(dir, "resumer.db")+`
`)

	return path
}

func Test_HandleAndStatus(t *testing.T) {
	configPath := writeAppConfig(t)

	out, err := run(t, "", "--config", configPath, "--log-level", "error",
		"handle", "--kind", "create", "--request-id", "req-1", "--physical-id", "pipeline",
		"--property", "StateMachine=arn:aws:states:eu-west-1:123456789012:stateMachine:deploy",
	)
	require.NoError(t, err)

	var resp lifecycle.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "pipeline", resp.PhysicalResourceID)
	require.Equal(t, string(decision.StatusExecutionStarted), resp.Data[lifecycle.AttrCurrentStatus])
	require.True(t, strings.HasPrefix(resp.Data[lifecycle.AttrLastExecutionArn], "arn:memory:execution:"))

	out, err = run(t, "", "--config", configPath, "--log-level", "error", "status", "--json")
	require.NoError(t, err)

	var records []*store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	require.Equal(t, "pipeline", records[0].PhysicalID)
	require.Equal(t, resp.Data, records[0].Attributes)

	out, err = run(t, "", "--config", configPath, "--log-level", "error", "status")
	require.NoError(t, err)
	require.Contains(t, out, "pipeline")
	require.Contains(t, out, "EXECUTION_STARTED")
}

func Test_Handle_EventFromStdin(t *testing.T) {
	configPath := writeAppConfig(t)

	event := `{
		"RequestType": "Update",
		"RequestId": "req-2",
		"PhysicalResourceId": "pipeline",
		"ResourceProperties": {"StateMachine": "arn:sm", "LastCfnUpdate": "1700000000000"}
	}`

	out, err := run(t, event, "--config", configPath, "--log-level", "error", "handle", "--event", "-")
	require.NoError(t, err)

	var resp lifecycle.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "pipeline", resp.PhysicalResourceID)
	require.Equal(t, string(decision.StatusExecutionStarted), resp.Data[lifecycle.AttrCurrentStatus])
}

func Test_Handle_InvalidInput(t *testing.T) {
	configPath := writeAppConfig(t)

	_, err := run(t, "", "--config", configPath, "handle", "--kind", "upsert")
	require.ErrorContains(t, err, "unknown event kind")

	_, err = run(t, "", "--config", configPath, "--log-level", "error", "handle", "--kind", "update")
	require.ErrorIs(t, err, lifecycle.ErrInvalidProperties)

	_, err = run(t, "", "--config", configPath, "--log-level", "verbose", "handle")
	require.ErrorContains(t, err, "unknown log level")
}

func Test_ParseKind(t *testing.T) {
	for s, want := range map[string]decision.Kind{
		"create": decision.KindCreate,
		"Update": decision.KindUpdate,
		"DELETE": decision.KindDelete,
	} {
		got, err := parseKind(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := parseKind("")
	require.Error(t, err)
}
