package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/bsql/dialect/sql/schema"
)

const (
	bsqlPkg = "github.com/syssam/bsql"
	sqlPkg  = "github.com/syssam/bsql/dialect/sql"
	header  = "Code generated by bsqlgen, DO NOT EDIT."
)

// Generator writes one file of typed wrappers per table. Files are
// rendered in parallel.
type Generator struct {
	tables  []*schema.Table
	outDir  string
	pkg     string
	workers int
}

// NewGenerator returns a generator writing into outDir. The package name
// defaults to the base name of outDir.
func NewGenerator(tables []*schema.Table, outDir string) *Generator {
	return &Generator{
		tables:  tables,
		outDir:  outDir,
		pkg:     filepath.Base(outDir),
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithPackage sets the name of the generated package.
func (g *Generator) WithPackage(name string) *Generator {
	if name != "" {
		g.pkg = name
	}
	return g
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate writes the files and returns their paths in table order.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("gen: create output directory: %w", err)
	}
	paths := make([]string, len(g.tables))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, t := range g.tables {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(g.outDir, fileName(t.Name))
			if err := File(g.pkg, t).Save(path); err != nil {
				return &GenerationError{Table: t.Name, Cause: err}
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func fileName(table string) string {
	return strings.ToLower(strings.ReplaceAll(table, "-", "_")) + ".go"
}

// File renders the wrappers of one table.
func File(pkg string, t *schema.Table) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(header)
	name := typeName(t.Name)
	tableConst := name + "Table"

	f.Commentf("%s is the name of the %s table.", tableConst, t.Name)
	f.Const().Id(tableConst).Op("=").Lit(t.Name)

	genColumns(f, name, t)
	genWrapper(f, name, tableConst, t)
	for _, c := range t.Columns {
		genGetter(f, name, c)
		if !c.PrimaryKey {
			genSetter(f, name, c)
		}
	}
	f.Commentf("Query%s returns the query helper of the %s table.", name, t.Name)
	f.Func().Id("Query"+name).Params(jen.Id("s").Op("*").Qual(bsqlPkg, "Session")).Op("*").Qual(bsqlPkg, "Query").Block(
		jen.Return(jen.Id("s").Dot("Table").Call(jen.Id(tableConst))),
	)
	return f
}

// genColumns declares the typed, table-qualified column names.
func genColumns(f *jen.File, name string, t *schema.Table) {
	var fields []jen.Code
	values := jen.Dict{}
	for _, c := range t.Columns {
		ft, ok := columnField(c)
		if !ok {
			continue
		}
		fields = append(fields, jen.Id(pascal(c.Name)).Qual(sqlPkg, ft))
		values[jen.Id(pascal(c.Name))] = jen.Lit(t.Name + "." + c.Name)
	}
	if len(fields) == 0 {
		return
	}
	f.Commentf("%sColumns holds the qualified column names of the %s table.", name, t.Name)
	f.Var().Id(name + "Columns").Op("=").Struct(fields...).Values(values)
}

func genWrapper(f *jen.File, name, tableConst string, t *schema.Table) {
	f.Commentf("%s is a record of the %s table.", name, t.Name)
	f.Type().Id(name).Struct(jen.Op("*").Qual(bsqlPkg, "Record"))

	f.Commentf("As%s wraps a record of the %s table.", name, t.Name)
	f.Func().Id("As"+name).Params(jen.Id("r").Op("*").Qual(bsqlPkg, "Record")).Params(jen.Op("*").Id(name), jen.Error()).Block(
		jen.If(jen.Id("r").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("nil record, expected "+t.Name))),
		),
		jen.If(jen.Id("r").Dot("Table").Call().Op("!=").Id(tableConst)).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("record of table %q, expected "+t.Name), jen.Id("r").Dot("Table").Call())),
		),
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("Record"): jen.Id("r")}), jen.Nil()),
	)

	plural := pluralName(name)
	f.Commentf("All%s wraps records of the %s table.", plural, t.Name)
	f.Func().Id("All"+plural).Params(jen.Id("recs").Index().Op("*").Qual(bsqlPkg, "Record")).Params(jen.Index().Op("*").Id(name), jen.Error()).Block(
		jen.Id("out").Op(":=").Make(jen.Index().Op("*").Id(name), jen.Lit(0), jen.Len(jen.Id("recs"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("r")).Op(":=").Range().Id("recs")).Block(
			jen.List(jen.Id("w"), jen.Err()).Op(":=").Id("As"+name).Call(jen.Id("r")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("w")),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)
	if len(t.PrimaryKey) > 0 {
		f.Commentf("%sKey lists the primary-key columns of the %s table.", name, t.Name)
		f.Var().Id(name+"Key").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
			for _, c := range t.PrimaryKey {
				g.Lit(c.Name)
			}
		})
	}
}

func genGetter(f *jen.File, name string, c *schema.Column) {
	accessor := accessorName(c.Name)
	recv := jen.Id("_r").Op("*").Id(name)
	typ, ok := goType(c)
	if !ok {
		f.Commentf("%s returns the %s column.", accessor, c.Name)
		f.Func().Params(recv).Id(accessor).Params().Params(jen.Any(), jen.Bool()).Block(
			jen.Return(jen.Id("_r").Dot("Lookup").Call(jen.Lit(c.Name))),
		)
		return
	}
	if c.Nullable {
		f.Commentf("%s returns the %s column. ok is false when it is NULL.", accessor, c.Name)
	} else {
		f.Commentf("%s returns the %s column.", accessor, c.Name)
	}
	f.Func().Params(recv).Id(accessor).Params().Params(jen.Id("v").Add(typ), jen.Id("ok").Bool()).Block(
		jen.Return(jen.Qual(bsqlPkg, "Value").Types(typ).Call(jen.Id("_r").Dot("Record"), jen.Lit(c.Name))),
	)
}

func genSetter(f *jen.File, name string, c *schema.Column) {
	setter := "Set" + accessorName(c.Name)
	typ, ok := goType(c)
	if !ok {
		typ = jen.Any()
	}
	f.Commentf("%s writes the %s column.", setter, c.Name)
	f.Func().Params(jen.Id("_r").Op("*").Id(name)).Id(setter).Params(jen.Id("v").Add(typ)).Error().Block(
		jen.Return(jen.Id("_r").Dot("Set").Call(jen.Lit(c.Name), jen.Id("v"))),
	)
}

// goType returns the Go type materialized values of c have.
func goType(c *schema.Column) (*jen.Statement, bool) {
	switch c.Kind() {
	case schema.KindInt:
		return jen.Int64(), true
	case schema.KindFloat:
		return jen.Float64(), true
	case schema.KindString:
		return jen.String(), true
	case schema.KindTime:
		return jen.Qual("time", "Time"), true
	case schema.KindBytes:
		return jen.Index().Byte(), true
	default:
		return nil, false
	}
}

// columnField returns the typed column name type of c.
func columnField(c *schema.Column) (string, bool) {
	switch c.Kind() {
	case schema.KindInt:
		return "IntField", true
	case schema.KindFloat:
		return "FloatField", true
	case schema.KindString:
		return "StringField", true
	case schema.KindTime:
		return "TimeField", true
	case schema.KindBytes:
		return "BytesField", true
	default:
		return "", false
	}
}
