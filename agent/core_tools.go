package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPMaxBytes caps how much of an http tool response is returned.
const DefaultHTTPMaxBytes = 100_000

// DefaultShellTimeout bounds one shell tool command.
const DefaultShellTimeout = 30 * time.Second

// CoreToolOptions configures the built-in tool set.
type CoreToolOptions struct {
	// EnableShell registers the shell tool. Off by default: the model runs
	// arbitrary commands with it.
	EnableShell bool

	// ShellTimeout bounds one command; zero means DefaultShellTimeout.
	ShellTimeout time.Duration

	// HTTPMaxBytes caps fetched response bodies; zero means
	// DefaultHTTPMaxBytes.
	HTTPMaxBytes int64
}

// RegisterCoreTools registers the built-in tools against a workspace.
func RegisterCoreTools(reg *Registry, ws *Workspace, opts CoreToolOptions) {
	registerFileIO(reg, ws)
	registerHTTP(reg, opts.HTTPMaxBytes)
	if opts.EnableShell {
		registerShell(reg, ws, opts.ShellTimeout)
	}
}

// registerFileIO adds the file-io tool: read, write, append, and list,
// all confined to the workspace.
func registerFileIO(reg *Registry, ws *Workspace) {
	reg.Register("file-io", func(ctx context.Context, params map[string]any) (string, error) {
		action, ok := GetStringParam(params, "action")
		if !ok || action == "" {
			return "", fmt.Errorf("action is required (read, write, append, list)")
		}
		path, ok := GetStringParam(params, "path")
		if !ok || path == "" {
			return "", fmt.Errorf("path is required")
		}

		switch action {
		case "read":
			return ws.ReadFile(path)
		case "write":
			content, ok := GetStringParam(params, "content")
			if !ok {
				return "", fmt.Errorf("content is required for write")
			}
			if err := ws.WriteFile(path, content); err != nil {
				return "", err
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
		case "append":
			content, ok := GetStringParam(params, "content")
			if !ok {
				return "", fmt.Errorf("content is required for append")
			}
			if err := ws.AppendFile(path, content); err != nil {
				return "", err
			}
			return fmt.Sprintf("appended %d bytes to %s", len(content), path), nil
		case "list":
			return ws.ListDir(path)
		default:
			return "", fmt.Errorf("unknown action: %s", action)
		}
	})
}

// registerShell adds the shell tool. Commands run in the workspace root
// with a filtered environment; non-zero exit is reported as a tool failure
// so the model sees it.
func registerShell(reg *Registry, ws *Workspace, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}
	reg.Register("shell", func(ctx context.Context, params map[string]any) (string, error) {
		command, ok := GetStringParam(params, "command")
		if !ok || command == "" {
			return "", fmt.Errorf("command is required")
		}

		res, err := ws.Exec(ctx, command, timeout)
		if err != nil {
			return "", err
		}
		if res.TimedOut {
			return "", fmt.Errorf("command timed out after %s", timeout)
		}
		if res.ExitCode != 0 {
			return "", fmt.Errorf("exit code %d: %s", res.ExitCode, strings.TrimSpace(res.Output()))
		}
		return res.Output(), nil
	})
}

// registerHTTP adds the http tool: GET a URL and return the body, capped.
func registerHTTP(reg *Registry, maxBytes int64) {
	if maxBytes <= 0 {
		maxBytes = DefaultHTTPMaxBytes
	}
	client := &http.Client{}

	reg.Register("http", func(ctx context.Context, params map[string]any) (string, error) {
		url, ok := GetStringParam(params, "url")
		if !ok || url == "" {
			return "", fmt.Errorf("url is required")
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return "", fmt.Errorf("url must be http or https")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if err != nil {
			return "", err
		}
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return string(body), nil
	})
}
