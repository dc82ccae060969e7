package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/core/domain"
)

var (
	indexPrefix string
	indexJSON   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the index catalogue",
	Long:  `Read the catalogue of indexed files kept in publish.index_dir.`,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed files",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexShowCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Show the index entry of a hierarchy path",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexShow,
}

func init() {
	indexListCmd.Flags().StringVar(&indexPrefix, "prefix", "", "only list paths starting with this prefix")
	indexListCmd.Flags().BoolVar(&indexJSON, "json", false, "print entries as JSON")
	indexShowCmd.Flags().BoolVar(&indexJSON, "json", false, "print the entry as JSON")
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexShowCmd)
	rootCmd.AddCommand(indexCmd)
}

func openIndex() (Catalogue, error) {
	svc, err := settings()
	if err != nil {
		return nil, err
	}
	s, err := svc.Get()
	if err != nil {
		return nil, err
	}
	return openCatalogue(s)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	cat, err := openIndex()
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List(cmd.Context(), indexPrefix)
	if err != nil {
		return fmt.Errorf("failed to list index: %w", err)
	}

	if indexJSON {
		return writeJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("No indexed files.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tHANDLER\tCATEGORY\tSIZE\tINDEXED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			e.Path, e.Handler, e.Category, e.Size, e.IndexedAt.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	cmd.Printf("\n%d file(s)\n", len(entries))
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	cat, err := openIndex()
	if err != nil {
		return err
	}
	defer cat.Close()

	entry, err := cat.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s is not indexed", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get index entry: %w", err)
	}

	if indexJSON {
		return writeJSON(cmd, entry)
	}

	cmd.Printf("Path:     %s\n", entry.Path)
	cmd.Printf("File:     %s\n", entry.FileName)
	cmd.Printf("Handler:  %s\n", entry.Handler)
	cmd.Printf("Category: %s\n", entry.Category)
	cmd.Printf("Format:   %s\n", entry.Format)
	cmd.Printf("Size:     %d\n", entry.Size)
	cmd.Printf("SHA-256:  %s\n", entry.SHA256)
	cmd.Printf("Indexed:  %s\n", entry.IndexedAt.Format("2006-01-02 15:04:05 MST"))
	printMap(cmd, "Fields", entry.Fields)
	printMap(cmd, "Attributes", entry.Attributes)
	return nil
}

func printMap(cmd *cobra.Command, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Printf("%s:\n", title)
	for _, k := range keys {
		cmd.Printf("  %s: %s\n", k, m[k])
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
