package cmd

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	choiceSample       = "Create sample data"
	choiceExplore      = "Run data exploration"
	choiceCheck        = "Check project setup"
	choiceInstructions = "Show export instructions"
	choiceExit         = "Exit"
)

var quickstartChoices = []string{choiceSample, choiceExplore, choiceCheck, choiceInstructions, choiceExit}

func newQuickstartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "Interactive menu for the first steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pterm.DefaultHeader.Println("Email Features - Quick Start")
			pterm.Info.Println("Build a labeled dataset to categorize your emails by their existing filters.")

			for {
				choice, err := pterm.DefaultInteractiveSelect.
					WithOptions(quickstartChoices).
					WithDefaultText("What would you like to do?").
					Show()
				if err != nil {
					return err
				}
				if choice == choiceExit {
					pterm.Success.Println("Goodbye! Happy coding!")
					return nil
				}

				if err := a.runChoice(cmd.OutOrStdout(), choice); err != nil {
					pterm.Error.Println(err.Error())
				}
			}
		},
	}
}

// runChoice performs one quickstart menu action.
func (a *app) runChoice(w io.Writer, choice string) error {
	switch choice {
	case choiceSample:
		return a.writeSamples(w, "csv", false, false)
	case choiceExplore:
		return a.explore(w, filepath.Join(a.cfg.DataDir, "sample_emails.csv"))
	case choiceCheck:
		return a.check(w, ".", false)
	case choiceInstructions:
		return writeInstructions(w, "")
	default:
		return errors.New("unknown choice: " + choice)
	}
}
