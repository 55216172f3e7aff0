package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/hydrogen-sites/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the text analysis report for the selected view and metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.analyzer(cmd)
			if err != nil {
				return err
			}
			view, metric := opts.selection()
			_, err = io.WriteString(cmd.OutOrStdout(), a.Analyze(view, metric).Report.Text())
			return err
		},
	}
}

func sitesCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List the sites in the selected view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.analyzer(cmd)
			if err != nil {
				return err
			}
			view, _ := opts.selection()
			sites := a.Sites(view)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sites)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCITY\tTYPE\tSTATUS\tCOST\tCARBON")
			for _, s := range sites {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n", s.ID, s.Name, s.City, s.Type, s.Status, s.Cost, s.Carbon)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sites as JSON")
	return cmd
}

func exportCmd(opts *options) *cobra.Command {
	var (
		output   string
		format   string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the analysis document to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(exportFormat(format, output))
			if err != nil {
				return err
			}

			a, err := opts.analyzer(cmd)
			if err != nil {
				return err
			}
			view, metric := opts.selection()

			if output == "-" {
				_, err := a.Export(cmd.OutOrStdout(), view, metric, f, compress)
				return err
			}
			if output == "" {
				output = report.FileName(f, compress)
			}
			// A .gz output name always means a compressed document.
			compress = compress || strings.HasSuffix(output, ".gz")

			var doc report.Document
			err = writeFile(output, func(w io.Writer) error {
				var werr error
				doc, werr = a.Export(w, view, metric, f, compress)
				return werr
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (report %s)\n", output, doc.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default Hydrogen_Analysis_Report.<format>)`)
	cmd.Flags().StringVar(&format, "format", "", "txt, json or parquet (default from the output extension, else txt)")
	cmd.Flags().BoolVar(&compress, "gzip", false, "gzip-compress the document")
	return cmd
}

func validateCmd(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset for values outside the documented conventions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.loadStore()
			if err != nil {
				return err
			}

			findings := s.Check()
			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f.String())
			}
			fmt.Fprintf(out, "%d sites, %d findings\n", s.Len(), len(findings))

			if strict && len(findings) > 0 {
				return fmt.Errorf("dataset has %d findings", len(findings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any finding is reported")
	return cmd
}

// writeFile creates path and fills it with write. On any failure the partial
// file is removed.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(file)
}

// exportFormat picks the explicit format, or infers it from the output name.
func exportFormat(explicit, output string) string {
	if explicit != "" {
		return explicit
	}
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(output, ".gz")), ".")
	if ext == "" || output == "-" {
		return string(report.FormatText)
	}
	return ext
}
