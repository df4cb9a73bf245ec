// Command bsqlgen inspects MySQL tables and generates typed record
// wrappers for them.
//
//	bsqlgen inspect person photo
//	bsqlgen gen --out internal/models person photo
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/bsql"
	"github.com/syssam/bsql/compiler/gen"
	"github.com/syssam/bsql/config"
	"github.com/syssam/bsql/dialect/sql/schema"
)

var (
	configPath string
	outDir     string
	pkgName    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bsqlgen",
	Short:         "MySQL catalog inspection and record wrapper generation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <table>...",
	Short: "Print the catalog entries of tables",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

var genCmd = &cobra.Command{
	Use:   "gen <table>...",
	Short: "Generate typed record wrappers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGen,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (environment variables override it)")
	genCmd.Flags().StringVar(&outDir, "out", "models", "Output directory")
	genCmd.Flags().StringVar(&pkgName, "pkg", "", "Package name (default: base name of the output directory)")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(genCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}

// loadTables connects with the configured database and introspects the
// named tables.
func loadTables(ctx context.Context, names []string) ([]*schema.Table, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	// Catalog queries only; statement logging adds nothing here.
	cfg.VerboseExecution = false
	client, err := bsql.Open(cfg, bsql.WithLogger(log), bsql.WithoutCache())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer client.Close()

	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := client.Catalog().Load(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	tables, err := loadTables(cmd.Context(), args)
	if err != nil {
		return err
	}
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := printTable(cmd.OutOrStdout(), t); err != nil {
			return err
		}
	}
	return nil
}

func printTable(out io.Writer, t *schema.Table) error {
	fmt.Fprintf(out, "%s\n", t.Name)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  COLUMN\tTYPE\tNULL\tKEY\tREFERENCES")
	for _, c := range t.Columns {
		var key []string
		if c.PrimaryKey {
			key = append(key, "PRI")
		}
		if c.AutoIncrement {
			key = append(key, "AUTO")
		}
		if c.Unique {
			key = append(key, "UNI")
		}
		ref := ""
		if c.Reference != nil {
			ref = c.Reference.Table + "." + c.Reference.Column
		}
		null := "NO"
		if c.Nullable {
			null = "YES"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", c.Name, c.Type, null, strings.Join(key, ","), ref)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(t.Relationships) > 0 {
		fmt.Fprintf(out, "  referenced by: %s\n", strings.Join(t.Relationships, ", "))
	}
	return nil
}

func runGen(cmd *cobra.Command, args []string) error {
	tables, err := loadTables(cmd.Context(), args)
	if err != nil {
		return err
	}
	paths, err := gen.NewGenerator(tables, outDir).WithPackage(pkgName).Generate(cmd.Context())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}
