package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taskglass/taskglass/models"
	"github.com/taskglass/taskglass/store"
	"github.com/taskglass/taskglass/types"
)

// DefaultProtocolTimeout bounds one protocol round trip including server
// spawn and handshake.
const DefaultProtocolTimeout = 30 * time.Second

// ProtocolChannel speaks MCP to the backing system's server, spawned as a
// stdio subprocess per call. Connections are not pooled: calls are rare,
// human-initiated, and a fresh handshake is cheaper than keeping a child
// process alive between them.
type ProtocolChannel struct {
	command     string
	args        []string
	projectRoot string
	timeout     time.Duration
	clientInfo  *mcpsdk.Implementation
}

// NewProtocolChannel creates a protocol channel that spawns command args...
// as the MCP server. projectRoot is passed to every tool call; the backing
// server resolves its task files relative to it.
func NewProtocolChannel(command string, args []string, projectRoot, clientVersion string, timeout time.Duration) *ProtocolChannel {
	if timeout <= 0 {
		timeout = DefaultProtocolTimeout
	}
	return &ProtocolChannel{
		command:     command,
		args:        args,
		projectRoot: projectRoot,
		timeout:     timeout,
		clientInfo:  &mcpsdk.Implementation{Name: "taskglass", Version: clientVersion},
	}
}

func (p *ProtocolChannel) Name() string { return NameProtocol }

// Available reports whether the server executable exists on PATH.
func (p *ProtocolChannel) Available(ctx context.Context) bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// callTool spawns the server, performs the handshake, invokes a single tool
// and tears the session down again.
func (p *ProtocolChannel) callTool(ctx context.Context, tool string, args map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client := mcpsdk.NewClient(p.clientInfo, nil)
	transport := mcpsdk.NewCommandTransport(exec.Command(p.command, p.args...))
	session, err := client.Connect(ctx, transport)
	if err != nil {
		return "", fmt.Errorf("connect to protocol server: %w", err)
	}
	defer func() { _ = session.Close() }()

	if p.projectRoot != "" {
		args["projectRoot"] = p.projectRoot
	}
	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", tool, err)
	}
	text := textContent(result)
	if result.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", tool, text)
	}
	return text, nil
}

func textContent(result *mcpsdk.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := content.(*mcpsdk.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// GetTasks fetches the raw task list for a tag. The response payload is
// sanitized exactly like a file-sourced list before anything downstream sees
// it; the protocol channel is not trusted to return well-formed data.
func (p *ProtocolChannel) GetTasks(ctx context.Context, tag string) ([]models.Task, error) {
	args := map[string]any{"withSubtasks": true}
	if tag != "" {
		args["tag"] = tag
	}
	text, err := p.callTool(ctx, "get_tasks", args)
	if err != nil {
		return nil, &types.ChannelError{Channel: NameProtocol, Op: "get-tasks", Err: err}
	}
	tasks, issues, err := store.SanitizeJSON([]byte(unwrapData(text)))
	if err != nil {
		return nil, &types.ChannelError{Channel: NameProtocol, Op: "get-tasks", Err: err}
	}
	for _, issue := range issues {
		slogIssue("get-tasks", issue)
	}
	return tasks, nil
}

// SetStatus updates one task's status through the server.
func (p *ProtocolChannel) SetStatus(ctx context.Context, id string, status models.TaskStatus, tag string) error {
	args := map[string]any{"id": id, "status": models.DenormalizeStatus(status)}
	if tag != "" {
		args["tag"] = tag
	}
	if _, err := p.callTool(ctx, "set_task_status", args); err != nil {
		return &types.ChannelError{Channel: NameProtocol, Op: "set-status", Err: err}
	}
	return nil
}

// AddTask creates a task through the server.
func (p *ProtocolChannel) AddTask(ctx context.Context, task models.Task, tag string) error {
	args := map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"priority":    string(task.Priority),
	}
	if tag != "" {
		args["tag"] = tag
	}
	if _, err := p.callTool(ctx, "add_task", args); err != nil {
		return &types.ChannelError{Channel: NameProtocol, Op: "add-task", Err: err}
	}
	return nil
}

// ExpandTask asks the server to break a task into subtasks.
func (p *ProtocolChannel) ExpandTask(ctx context.Context, id string, force bool, tag string) error {
	args := map[string]any{"id": id, "force": force}
	if tag != "" {
		args["tag"] = tag
	}
	if _, err := p.callTool(ctx, "expand_task", args); err != nil {
		return &types.ChannelError{Channel: NameProtocol, Op: "expand-task", Err: err}
	}
	return nil
}

// unwrapData strips the {"data": {...}} envelope some server builds put
// around tool payloads. The inner value is handed to the sanitizer as-is.
func unwrapData(text string) string {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && len(envelope.Data) > 0 {
		return string(envelope.Data)
	}
	return text
}

// Version probes the server's version with a raw initialize handshake on a
// short-lived subprocess. The full SDK session is overkill here: we only
// need serverInfo out of the first response, under the short probe timeout.
func (p *ProtocolChannel) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultVersionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: err}
	}
	defer func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	init := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2024-11-05",
			"clientInfo":      map[string]any{"name": p.clientInfo.Name, "version": p.clientInfo.Version},
			"capabilities":    map[string]any{},
		},
	}
	payload, _ := json.Marshal(init)
	if _, err := stdin.Write(append(payload, '\n')); err != nil {
		return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: err}
	}

	version, err := readServerVersion(bufio.NewReader(stdout))
	if err != nil {
		return "", &types.ChannelError{Channel: NameProtocol, Op: "version", Err: err}
	}
	return version, nil
}

func readServerVersion(r *bufio.Reader) (string, error) {
	// Servers may emit log lines before the response; scan a bounded number
	// of lines for the initialize result.
	for i := 0; i < 16; i++ {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return "", fmt.Errorf("read initialize response: %w", err)
		}
		var resp struct {
			Result *struct {
				ServerInfo struct {
					Version string `json:"version"`
				} `json:"serverInfo"`
			} `json:"result"`
		}
		if err := json.Unmarshal(line, &resp); err != nil || resp.Result == nil {
			continue
		}
		return resp.Result.ServerInfo.Version, nil
	}
	return "", fmt.Errorf("no initialize response in server output")
}
