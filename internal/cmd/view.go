package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/table"
	"github.com/spf13/cobra"
)

const typeSampleRows = 100

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Browse a CSV, TSV or JSON file",
	Long: heredoc.Doc(`
		Browse a CSV, TSV or JSON file.

		JSON input is an array of objects; --columns selects the columns with
		gjson paths. Use "-" to read from stdin together with --format.
	`),
	Example: heredoc.Doc(`
		datagrid view people.csv
		datagrid view --columns id,name.first,age people.json
		curl -s example.com/people.json | datagrid view -f json -
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
		return runTable(cmd, cfg, tbl)
	},
}

func init() {
	addFileFlags(viewCmd)
	addTableFlags(viewCmd)
}
