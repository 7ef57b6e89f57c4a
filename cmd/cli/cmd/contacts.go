// Package cmd - contacts command
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"filmscope/core/contacts"
)

var (
	contactsAppend bool
	contactsFormat string
)

// contactsCmd manages the press and influencer contact list
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Import and export the press contact list",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import contacts from a .csv or .xlsx file",
	Long: `Import contacts from a CSV file or an Excel workbook. The file needs a
header row with at least a "name" column. Rows that fail validation are
reported and skipped.

By default the import replaces the stored list; use --append to add to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runContactsImport,
}

var contactsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export contacts to a .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsExport,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contacts",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

func init() {
	contactsCmd.AddCommand(contactsImportCmd, contactsExportCmd, contactsListCmd)

	contactsImportCmd.Flags().BoolVar(&contactsAppend, "append", false, "keep existing contacts")
	contactsListCmd.Flags().StringVarP(&contactsFormat, "format", "f", "", "output format (cli, json)")
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func runContactsImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	var res *contacts.ImportResult
	if isXLSX(args[0]) {
		res, err = contacts.ImportXLSX(f)
	} else {
		res, err = contacts.ImportCSV(f)
	}
	if err != nil {
		return userError(err)
	}
	if res.AllRejected() {
		w := cmd.ErrOrStderr()
		for _, rowErr := range res.Errors {
			fmt.Fprintf(w, "  skipped %s\n", rowErr.Error())
		}
		return fmt.Errorf("no rows in %s could be imported; contact list left unchanged", args[0])
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	list := res.Contacts
	if contactsAppend {
		existing, err := store.ListContacts(cmd.Context())
		if err != nil {
			return userError(err)
		}
		list = append(existing, list...)
	}
	if err := store.ReplaceContacts(cmd.Context(), list); err != nil {
		return userError(err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %d of %d contacts.\n", res.Imported, res.Total)
	for _, rowErr := range res.Errors {
		fmt.Fprintf(w, "  skipped %s\n", rowErr.Error())
	}
	return nil
}

func runContactsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.ListContacts(cmd.Context())
	if err != nil {
		return userError(err)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}
	if isXLSX(args[0]) {
		err = contacts.ExportXLSX(f, list)
	} else {
		err = contacts.ExportCSV(f, list)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return userError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s\n", len(list), args[0])
	return nil
}

func runContactsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.ListContacts(cmd.Context())
	if err != nil {
		return userError(err)
	}
	if contactsFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	printContacts(cmd.OutOrStdout(), list)
	return nil
}

func printContacts(w io.Writer, list []contacts.Contact) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No contacts stored.")
		return
	}
	fmt.Fprintf(w, "%-24s %-28s %-20s %10s\n", "NAME", "EMAIL", "OUTLET", "FOLLOWERS")
	for _, c := range list {
		followers := ""
		if c.Followers > 0 {
			followers = fmt.Sprintf("%d", c.Followers)
		}
		fmt.Fprintf(w, "%-24s %-28s %-20s %10s\n",
			truncate(c.Name, 24), truncate(c.Email, 28), truncate(c.Outlet, 20), followers)
	}
}
