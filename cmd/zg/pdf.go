package main

import (
	"github.com/spf13/cobra"
)

var pdfPrintPath bool

func init() {
	pdfCmd.Flags().BoolVar(&pdfPrintPath, "path", false, "Print the PDF path instead of opening it")
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf <project> <paper>",
	Short: "Open the PDF of a paper",
	Long: `Open the library PDF attachment of a paper in the configured reader
(pdf_reader in the global config).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()
		if a.bridge == nil {
			exitWithError(ExitConfigError, "no library configured")
		}

		rec, ok := a.engine.Record(args[1])
		if !ok {
			exitWithError(ExitDataError, "paper %s not in project", args[1])
		}
		if rec.Library == nil {
			exitWithError(ExitDataError, "paper %s is not in the library", args[1])
		}
		attachment, err := a.bridge.PDFPath(cmd.Context(), rec.Library.Key)
		if err != nil {
			return err
		}
		if attachment == "" {
			exitWithError(ExitDataError, "paper %s has no PDF attachment", args[1])
		}
		path, err := a.opener.ResolvePath(attachment)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}

		if pdfPrintPath {
			if humanOutput {
				outputHuman("%s\n", path)
				return nil
			}
			return outputJSON(StatusResponse{Status: "found", Path: path})
		}
		if err := a.opener.Open(path); err != nil {
			return err
		}
		if humanOutput {
			outputHuman("Opened %s\n", path)
			return nil
		}
		return outputJSON(StatusResponse{Status: "opened", Path: path})
	},
}
