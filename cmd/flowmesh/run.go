package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/flowmesh-ai/flowmesh"
	"github.com/flowmesh-ai/flowmesh/config"
	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/logging"
	"github.com/flowmesh-ai/flowmesh/manager"
	"github.com/flowmesh-ai/flowmesh/metrics"
	"github.com/flowmesh-ai/flowmesh/model"
	"github.com/flowmesh-ai/flowmesh/model/anthropic"
	"github.com/flowmesh-ai/flowmesh/model/openai"
	"github.com/flowmesh-ai/flowmesh/topology"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		task       string
		echo       bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workflow from a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if task != "" {
				cfg.Task = task
			}
			if echo {
				cfg.Handles = config.HandleModeEcho
			}

			level := logging.LogLevelWarn
			if verbose {
				level = logging.LogLevelDebug
			}
			logger := logging.New(level, cfg.Logging.Format, os.Stderr)

			resolver, err := buildResolver(cfg)
			if err != nil {
				return err
			}
			mgr := buildManager(cfg)

			events := core.NewChannelSink(256)
			sink := core.MultiSink{events, metrics.NewCollector()}

			mesh, err := flowmesh.New(cfg.Workflow, resolver, func(o *flowmesh.Options) {
				o.Logger = logger
				o.Sink = sink
				o.Manager = mgr
				o.InvocationTimeout = cfg.InvocationTimeout
			})
			if err != nil {
				return err
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				renderEvents(cmd.OutOrStdout(), events.Events())
			}()

			result, runErr := mesh.Run(context.Background(), cfg.Task)
			events.Close()
			<-done

			if runErr != nil {
				return runErr
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowmesh.yaml", "workflow configuration file")
	cmd.Flags().StringVarP(&task, "task", "t", "", "override the configured task description")
	cmd.Flags().BoolVar(&echo, "echo", false, "use deterministic echo handles instead of model calls")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a workflow configuration without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			graph, err := topology.Build(cfg.Workflow)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s workflow, %d agents\n",
				okStyle.Render("valid:"), graph.Kind(), len(graph.Agents()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowmesh.yaml", "workflow configuration file")

	return cmd
}

// buildResolver binds every declared agent to a handle. Echo mode is fully
// offline; model mode picks the provider from the agent's model id prefix.
func buildResolver(cfg *config.Config) (core.HandleResolver, error) {
	handles := core.HandleMap{}
	for _, agent := range cfg.Workflow.Agents {
		if cfg.Handles == config.HandleModeEcho {
			a := agent
			handles[a.Name] = core.HandleFunc(func(_ context.Context, task, _ string) (string, error) {
				return fmt.Sprintf("[%s] %s", a.Name, task), nil
			})
			continue
		}
		m, err := modelFor(agent.Model)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", agent.Name, err)
		}
		handles[agent.Name] = model.NewHandle(m, agent)
	}
	return handles, nil
}

// buildManager wires the magentic manager: scripted single-round completion
// in echo mode, model-backed otherwise.
func buildManager(cfg *config.Config) manager.Manager {
	if cfg.Workflow.Kind != topology.KindMagentic {
		return nil
	}
	if cfg.Handles == config.HandleModeEcho {
		var assignments []manager.Assignment
		for _, a := range cfg.Workflow.Agents {
			assignments = append(assignments, manager.Assignment{Agent: a.Name})
		}
		return manager.NewScriptedManager(
			[]manager.Plan{{Assignments: assignments, Note: "single echo round"}},
			[]manager.Verdict{{Complete: true}},
		)
	}
	managerModel := ""
	if cfg.Workflow.Manager != nil {
		managerModel = cfg.Workflow.Manager.Model
	}
	m, err := modelFor(managerModel)
	if err != nil {
		m = openai.NewModel()
	}
	return manager.NewModelManager(m)
}

// modelFor selects a provider adapter from an opaque model identifier.
func modelFor(id string) (model.Model, error) {
	switch {
	case id == "":
		return openai.NewModel(), nil
	case strings.HasPrefix(id, "claude"):
		return anthropic.NewModel(func(o *anthropic.Options) { o.Model = sdk.Model(id) }), nil
	case strings.HasPrefix(id, "gpt") || strings.HasPrefix(id, "o"):
		return openai.NewModel(func(o *openai.Options) { o.Model = id }), nil
	default:
		return nil, fmt.Errorf("unrecognized model id %q", id)
	}
}
