package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/table"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot FILE",
	Short: "Render a file once and print it",
	Long: heredoc.Doc(`
		Render the first page of a file once and print it. Styles are kept
		when the output is a terminal or --color is set. With --html the
		rows are printed as div markup instead.
	`),
	Example: heredoc.Doc(`
		datagrid snapshot --width 80 --height 20 people.csv
		datagrid snapshot --html --rows 100 people.csv > people.html
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := getTableFlags(cmd)
		if err := flags.configure(cfg); err != nil {
			return err
		}

		var opts snapshotOptions
		opts.Width, _ = cmd.Flags().GetInt("width")
		opts.Height, _ = cmd.Flags().GetInt("height")
		opts.Rows, _ = cmd.Flags().GetInt("rows")
		opts.HTML, _ = cmd.Flags().GetBool("html")
		opts.Color, _ = cmd.Flags().GetBool("color")
		if opts.Width <= 0 || opts.Height <= 0 {
			return fmt.Errorf("--width and --height must be positive")
		}

		format, _ := cmd.Flags().GetString("format")
		columns, _ := cmd.Flags().GetStringSlice("columns")
		src, err := readSource(args[0], format, columns, cmd.InOrStdin())
		if err != nil {
			return err
		}

		tbl := table.New(common.DefaultCommon(cfg), src)
		defer tbl.Close()
		if args[0] != "-" {
			tbl.SetTitle(args[0])
		}
		tbl.UseTypedRenderers(typeSampleRows)
		if err := flags.apply(tbl); err != nil {
			return err
		}
		return writeSnapshot(cmd.Context(), cmd.OutOrStdout(), tbl, opts)
	},
}

func init() {
	snapshotCmd.Flags().Int("width", defaultSnapshotWidth, "Width in cells")
	snapshotCmd.Flags().Int("height", defaultSnapshotHeight, "Height in lines")
	snapshotCmd.Flags().Int("rows", -1, "Rows of HTML output, -1 for all")
	snapshotCmd.Flags().Bool("html", false, "Print div markup")
	snapshotCmd.Flags().Bool("color", false, "Keep styles when the output is not a terminal")
	addFileFlags(snapshotCmd)
	addTableFlags(snapshotCmd)
}
