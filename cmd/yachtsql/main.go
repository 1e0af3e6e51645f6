// Command yachtsql runs SQL scripts against an in-process engine
// session. It is the external collaborator the engine core expects: a
// small frontend that lowers a restricted SQL subset to logical plans
// and formats the resulting batches.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yachtsql/output"
	"yachtsql/plan"
	"yachtsql/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yachtsql",
		Short: "Embeddable analytic SQL engine",
	}

	var configFile string
	var formatName string
	var verbose bool
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Optional TOML config file")
	rootCmd.PersistentFlags().StringVarP(&formatName, "format", "f", "human", "Output format (human or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log catalog mutations to stderr")

	newSession := func() (*session.Session, error) {
		cfg, err := session.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		opts := []session.Option{
			session.WithConfig(cfg),
			session.WithPlanner(newScriptPlanner()),
		}
		if verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return nil, err
			}
			opts = append(opts, session.WithLogger(logger))
		}
		return session.New(opts...), nil
	}

	execCmd := &cobra.Command{
		Use:   "exec <script.sql>",
		Short: "Run a SQL script and print query results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			s, err := newSession()
			if err != nil {
				return err
			}
			formatter, err := output.NewFormatter(formatName)
			if err != nil {
				return err
			}

			planner := newScriptPlanner()
			nodes, err := planner.ParseScript(string(data))
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, node := range nodes {
				batches, err := s.ExecutePlan(ctx, node)
				if err != nil {
					return err
				}
				if !plan.IsQuery(node) {
					continue
				}
				text, err := formatter.FormatResult(session.ResultFromBatches(batches))
				if err != nil {
					return err
				}
				fmt.Print(text)
			}
			return nil
		},
	}

	explainCmd := &cobra.Command{
		Use:   "explain <script.sql>",
		Short: "Print the lowered plan for each query in a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			s, err := newSession()
			if err != nil {
				return err
			}

			planner := newScriptPlanner()
			nodes, err := planner.ParseScript(string(data))
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, node := range nodes {
				if !plan.IsQuery(node) {
					// DDL/DML still executes so later plans resolve
					// against the tables it creates.
					if _, err := s.ExecutePlan(ctx, node); err != nil {
						return err
					}
					continue
				}
				batches, err := s.ExecutePlan(ctx, &plan.Explain{Input: node})
				if err != nil {
					return err
				}
				for _, b := range batches {
					for i := 0; i < b.NumRows(); i++ {
						text, _ := b.Columns[0].Get(i).AsString()
						fmt.Println(text)
					}
				}
			}
			return nil
		},
	}

	tablesCmd := &cobra.Command{
		Use:   "tables <schema.sql>",
		Short: "Load a DDL file and list the resulting tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read schema: %w", err)
			}
			s, err := newSession()
			if err != nil {
				return err
			}
			planner := newScriptPlanner()
			nodes, err := planner.ParseScript(string(data))
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, node := range nodes {
				if _, err := s.ExecutePlan(ctx, node); err != nil {
					return err
				}
			}
			for _, name := range s.Catalog().TableNames() {
				t, ok := s.Catalog().LookupTable(name)
				if !ok {
					continue
				}
				fmt.Printf("%s (%d rows)\n", name, t.RowCount())
				for _, f := range t.Schema().Fields() {
					fmt.Printf("  %s %s\n", f.Name, f.Type)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(tablesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
