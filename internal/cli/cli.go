// Package cli implements the pipelinecheck command, which runs the gateway's
// validation against pipeline files without starting a server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pipelinecheck/internal/gateway/handler/rpc"
	"pipelinecheck/internal/gateway/schema"
	"pipelinecheck/internal/pipeline/graph"
	"pipelinecheck/internal/safeio"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// ExitError carries a non-zero exit code out of a command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

type checkOptions struct {
	strict   bool
	remote   string
	timeout  time.Duration
	root     string
	maxBytes int64
}

// FileReport pairs a report with the file it came from.
type FileReport struct {
	File   string        `json:"file"`
	Report *graph.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pipelinecheck",
		Short:         "Validate pipeline graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newCheckCommand(), newVersionCommand())
	return root
}

func newCheckCommand() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check pipeline files (JSON or YAML) and print their reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 1 unless every pipeline is a valid DAG")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "gateway base URL; check over RPC instead of locally")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for remote checks")
	cmd.Flags().StringVar(&opts.root, "root", "", "only read files under this directory")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 4<<20, "reject files larger than this; 0 disables the limit")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func runCheck(ctx context.Context, out io.Writer, files []string, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fsys, err := safeio.New(opts.root, opts.maxBytes)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	var client *rpc.PipelineServiceClient
	if opts.remote != "" {
		client = rpc.NewPipelineServiceClient(&http.Client{Timeout: opts.timeout}, opts.remote)
	}

	results := make([]FileReport, 0, len(files))
	failed := 0
	for _, file := range files {
		res := FileReport{File: file}
		report, err := checkFile(ctx, fsys, client, file)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.Report = report
			if !report.IsDAG {
				failed++
			}
		}
		results = append(results, res)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	if opts.strict && failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d pipeline(s) are not valid DAGs", failed, len(files))}
	}
	return nil
}

func checkFile(ctx context.Context, fsys *safeio.FS, client *rpc.PipelineServiceClient, file string) (*graph.Report, error) {
	b, err := fsys.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	var doc any
	isYAML := false
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		isYAML = true
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	if client != nil {
		if isYAML {
			if b, err = json.Marshal(doc); err != nil {
				return nil, fmt.Errorf("convert %s to json: %w", file, err)
			}
		}
		report, err := client.ParsePipeline(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("remote check %s: %w", file, err)
		}
		return report, nil
	}

	var sub graph.Submission
	if isYAML {
		sub, err = schema.DecodeValue(doc)
	} else {
		sub, err = schema.Decode(b)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	report := graph.Check(sub)
	return &report, nil
}
