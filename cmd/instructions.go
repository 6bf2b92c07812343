package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var exportInstructions = []struct {
	client string
	title  string
	text   string
}{
	{"gmail", "Gmail", `Method 1: Google Takeout
1. Go to Gmail Settings > Labels
2. Create labels for your email categories
3. Categorize some emails with those labels
4. Export the labels with Google Takeout (Settings > Accounts > Download data)
5. Run: email-features extract --input <label>.mbox --label <label>

Method 2: Using IMAP
1. Enable IMAP in Gmail settings
2. Download the messages of one label with an IMAP client into an .mbox file
3. Extract it with the label name as --label
`},
	{"outlook", "Outlook", `Method 1: Export to PST
1. Open Outlook
2. Go to File > Open & Export > Import/Export
3. Choose "Export to a file"
4. Select "Outlook Data File (.pst)"
5. Choose the folder to export and save the .pst file
6. Convert the .pst file to .mbox (for example with readpst -M)
7. Run: email-features extract --input <folder>.mbox --label <folder>

Method 2: Manual Export
1. Select emails in Outlook
2. Right-click > Save As and choose the text format
3. Collect the files into a CSV with id, content and filter_label columns
4. Run: email-features extract --input emails.csv
`},
	{"apple", "Apple Mail", `Method 1: Export Mailbox
1. Open Apple Mail
2. Select the mailbox you want to export
3. Go to Mailbox > Export Mailbox
4. Choose a location; Apple Mail writes an .mbox folder containing an mbox file
5. Run: email-features extract --input <mailbox>.mbox/mbox --label <mailbox>

Method 2: Manual Export
1. Select emails in Apple Mail
2. File > Save As and choose Raw Message Source
3. Collect the files into a CSV with id, content and filter_label columns
4. Run: email-features extract --input emails.csv
`},
}

func newInstructionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "instructions [gmail|outlook|apple]",
		Short:     "Show how to export labeled email from common clients",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"gmail", "outlook", "apple"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ""
			if len(args) == 1 {
				client = args[0]
			}
			return writeInstructions(cmd.OutOrStdout(), client)
		},
	}
}

// writeInstructions prints the instructions for client, or for every client
// when client is empty.
func writeInstructions(w io.Writer, client string) error {
	client = strings.ToLower(client)
	found := false
	for _, in := range exportInstructions {
		if client != "" && client != in.client {
			continue
		}
		found = true
		if _, err := fmt.Fprintf(w, "%s Export Instructions:\n\n%s\n", in.title, in.text); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("unknown mail client %q (want gmail, outlook or apple)", client)
	}
	return nil
}
