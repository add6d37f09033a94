package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
	"github.com/marmos91/photovault/internal/cli/prompt"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var reviewResume bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review duplicate groups interactively",
	Long: `Walk through unreviewed duplicate groups one at a time. Each group is
shown with its score ranking; pick the file to keep, skip the group, or
pause and come back later. Pausing keeps your position; a paused session
is picked up with --resume.

Validated groups become eligible for cleanup with 'pvctl dup clean'.

Examples:
  # Start a fresh session
  pvctl review

  # Pick up where a paused session left off
  pvctl review --resume`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewResume, "resume", false, "Resume a paused session instead of starting fresh")
}

func runReview(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	ctx := cmd.Context()

	session, err := client.StartSession(ctx, reviewResume)
	if err != nil {
		return fmt.Errorf("failed to start review session: %w", err)
	}

	if reviewResume {
		fmt.Printf("Resumed session %s: %d validated, %d skipped so far\n\n",
			session.ID, session.ValidatedCount, session.SkippedCount)
	} else {
		fmt.Printf("Started session %s\n\n", session.ID)
	}

	for {
		next, err := client.NextGroup(ctx, session.ID)
		if err != nil {
			var apiErr *apiclient.APIError
			if errors.As(err, &apiErr) && apiErr.Code == "noUnreviewedGroups" {
				fmt.Println("No unreviewed groups remaining.")
				break
			}
			return fmt.Errorf("failed to fetch next group: %w", err)
		}

		if err := showReviewGroup(next); err != nil {
			return err
		}

		action, err := promptReviewAction(next.Result.Scores)
		if err != nil {
			// Ctrl+C pauses rather than losing the position.
			if prompt.IsAborted(err) {
				return pauseReview(cmd, client, session.ID)
			}
			return err
		}

		switch action {
		case "skip":
			if err := client.Skip(ctx, session.ID, next.Group.ID); err != nil {
				return fmt.Errorf("failed to skip group: %w", err)
			}
			fmt.Println("Skipped.")
		case "pause":
			return pauseReview(cmd, client, session.ID)
		case "quit":
			if err := client.CompleteSession(ctx, session.ID); err != nil {
				return fmt.Errorf("failed to complete session: %w", err)
			}
			cmdutil.PrintSuccess("Session completed")
			return nil
		default:
			// Any other value is the chosen file's id.
			if err := client.Propose(ctx, session.ID, next.Group.ID, action); err != nil {
				return fmt.Errorf("failed to propose original: %w", err)
			}
			if err := client.Validate(ctx, session.ID, next.Group.ID); err != nil {
				return fmt.Errorf("failed to validate group: %w", err)
			}
			cmdutil.PrintSuccess("Original validated")
		}
		fmt.Println()
	}

	if err := client.CompleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	cmdutil.PrintSuccess("Session completed")
	return nil
}

func showReviewGroup(next *apiclient.NextGroupResponse) error {
	group := next.Group
	fmt.Printf("Group %s: %d files, %s total\n", group.ID, group.FileCount, cmdutil.FormatBytes(group.TotalSize))

	table := output.NewTableData("#", "PATH", "PRIORITY", "EXIF", "DEPTH", "AGE", "TOTAL")
	for i, s := range next.Result.Scores {
		table.AddRow(
			fmt.Sprintf("%d", i+1),
			cmdutil.Truncate(s.Path, 60),
			fmt.Sprintf("%d", s.Priority),
			fmt.Sprintf("%d", s.ExifBonus),
			fmt.Sprintf("%d", s.DepthBonus),
			fmt.Sprintf("%d", s.AgeBonus),
			fmt.Sprintf("%d", s.Total()),
		)
	}
	return output.PrintTable(os.Stdout, table)
}

// promptReviewAction returns the chosen file id, or one of the sentinel
// actions "skip", "pause", "quit".
func promptReviewAction(scores []apiclient.Score) (string, error) {
	options := make([]prompt.SelectOption, 0, len(scores)+3)
	for i, s := range scores {
		options = append(options, prompt.SelectOption{
			Label: fmt.Sprintf("Keep #%d  %s (score %d)", i+1, cmdutil.Truncate(s.Path, 50), s.Total()),
			Value: s.FileID,
		})
	}
	options = append(options,
		prompt.SelectOption{Label: "Skip this group", Value: "skip"},
		prompt.SelectOption{Label: "Pause session", Value: "pause"},
		prompt.SelectOption{Label: "Finish session", Value: "quit"},
	)
	return prompt.Select("Decision", options)
}

func pauseReview(cmd *cobra.Command, client *apiclient.Client, sessionID string) error {
	if err := client.PauseSession(cmd.Context(), sessionID); err != nil {
		return fmt.Errorf("failed to pause session: %w", err)
	}
	cmdutil.PrintSuccess("Session paused, resume with 'pvctl review --resume'")
	return nil
}
