package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/evaluator"
	"checklist-safety/internal/models"
	"checklist-safety/internal/repository"

	"github.com/spf13/cobra"
)

// StoreOpener connects the configured data source. close releases it.
type StoreOpener func(ctx context.Context) (store repository.Store, close func() error, err error)

// NewRootCommand checklist-tool command tree
func NewRootCommand(open StoreOpener) *cobra.Command {
	engine := alertrules.NewEngine(alertrules.DefaultRuleSet())

	root := &cobra.Command{
		Use:           "checklist-tool",
		Short:         "Inspection checklist alert rule tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newNormalizeCommand(),
		newEvaluateCommand(engine),
		newRepairTemplateCommand(engine, open),
	)
	return root
}

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <question>",
		Short: "Print the normalized form of a checklist question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), alertrules.NormalizeQuestion(args[0]))
			return nil
		},
	}
}

func newEvaluateCommand(engine *alertrules.Engine) *cobra.Command {
	var question, answer string
	var onYes, onNo bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Resolve the alert rule for a question and answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			item := models.ChecklistAnswer{Question: question, Answer: &answer}
			// stored flags only count when given explicitly
			if cmd.Flags().Changed("yes-flag") || cmd.Flags().Changed("no-flag") {
				item.AlertOnYes, item.AlertOnNo = &onYes, &onNo
			}
			return writeJSON(cmd.OutOrStdout(), evaluator.Explain(engine, item))
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "checklist question")
	cmd.Flags().StringVar(&answer, "answer", "", "answer given by the operator")
	cmd.Flags().BoolVar(&onYes, "yes-flag", false, "stored alert_on_yes flag")
	cmd.Flags().BoolVar(&onNo, "no-flag", false, "stored alert_on_no flag")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func newRepairTemplateCommand(engine *alertrules.Engine, open StoreOpener) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "repair-template",
		Short: "Align checklist_template alert flags with the current rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, closeStore, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			rows, err := store.ListChecklistTemplate(ctx)
			if err != nil {
				return fmt.Errorf("failed to load checklist template: %w", err)
			}

			_, changed := evaluator.RepairTemplate(engine, rows)
			out := cmd.OutOrStdout()
			if len(changed) == 0 {
				fmt.Fprintf(out, "%d template rows already match the alert rules\n", len(rows))
				return nil
			}

			before := make(map[string]models.ChecklistTemplateQuestion, len(rows))
			for _, row := range rows {
				before[row.ID] = row
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tQUESTION\tBEFORE\tAFTER")
			for _, row := range changed {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.ID, row.Question, flags(before[row.ID]), flags(row))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(out, "dry run: %d of %d rows would change\n", len(changed), len(rows))
				return nil
			}
			if err := store.UpdateTemplateFlags(ctx, changed); err != nil {
				return fmt.Errorf("failed to update checklist template: %w", err)
			}
			fmt.Fprintf(out, "updated %d of %d rows\n", len(changed), len(rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the changes without writing them")
	return cmd
}

func flags(row models.ChecklistTemplateQuestion) string {
	return fmt.Sprintf("yes=%s no=%s", flag(row.AlertOnYes), flag(row.AlertOnNo))
}

func flag(b *bool) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprint(*b)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
