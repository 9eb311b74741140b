package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-pair-link/models"
)

// NameStatus is answered by the console itself with the pairing read model.
const NameStatus = "Status"

// ConsoleResult is written for every command line read by [App.RunConsole].
type ConsoleResult struct {
	ID     string             `json:"id,omitempty"`
	Name   string             `json:"name,omitempty"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Status *models.PairStatus `json:"status,omitempty"`
}

// RunConsole reads one JSON command per line from in, dispatches it and
// writes a [ConsoleResult] line to out. Blank lines are skipped. It returns
// nil at EOF and ctx.Err() once ctx is done.
func (a *App) RunConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := encoder.Encode(a.execute(ctx, line)); err != nil {
			return fmt.Errorf("error writing console result: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading console input: %w", err)
	}
	return nil
}

func (a *App) execute(ctx context.Context, line string) ConsoleResult {
	var cmd models.Command
	if err := json.Unmarshal([]byte(line), &cmd); err != nil {
		return ConsoleResult{Error: fmt.Sprintf("malformed command: %v", err)}
	}

	if cmd.Name == NameStatus {
		status := a.Status(ctx)
		return ConsoleResult{ID: cmd.ID, Name: cmd.Name, OK: true, Status: &status}
	}

	if cmd.ID == "" {
		cmd.ID = a.ids.Generate()
	}
	result := ConsoleResult{ID: cmd.ID, Name: cmd.Name}

	if err := a.Dispatch(ctx, cmd); err != nil {
		a.logger.Debug().Str("func", "*App.execute").Str("command", cmd.Name).Err(err).Msg("command failed")
		result.Error = err.Error()
		return result
	}

	result.OK = true
	return result
}
