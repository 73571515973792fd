package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/infrastructure/postgres"
	"github.com/iho/moneyfield/internal/monetize"
	"github.com/iho/moneyfield/internal/record"
)

func currenciesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List registered currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tEXPONENT\tSYMBOL\tNAME\tDEFAULT")
			def := a.registry.Default()
			for _, c := range a.registry.List() {
				mark := ""
				if c.Code == def.Code {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", c.Code, c.Exponent, c.Symbol, c.Name, mark)
			}
			return w.Flush()
		},
	}
}

func modelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List catalog models and their monetized fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tCURRENCY\tROW CURRENCY\tFIELDS")
			for _, name := range a.catalog.Names() {
				m, err := a.catalog.Model(name)
				if err != nil {
					return err
				}
				fields := lo.Map(m.Fields(), func(f *monetize.Field, _ int) string {
					return describeField(f)
				})
				row := m.CurrencyColumn()
				if row == "" {
					row = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, m.Currency().Code, row, strings.Join(fields, ", "))
			}
			return w.Flush()
		},
	}
}

func describeField(f *monetize.Field) string {
	var flags []string
	if c, ok := f.FixedCurrency(); ok {
		flags = append(flags, c.Code)
	}
	if f.AllowNil() {
		flags = append(flags, "allow_nil")
	}
	if f.Strict() {
		flags = append(flags, "strict")
	}
	s := f.Name() + "<" + f.Column() + ">"
	if len(flags) > 0 {
		s += "[" + strings.Join(flags, ",") + "]"
	}
	return s
}

func centsCmd(a *app) *cobra.Command {
	var rowCurrency string

	cmd := &cobra.Command{
		Use:   "cents <model> <field> <amount>",
		Short: "Show the minor units a field stores for an amount",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.catalog.Model(args[0])
			if err != nil {
				return err
			}
			f, ok := m.Field(args[1])
			if !ok {
				return fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, args[0], args[1])
			}

			r := record.New(m.Schema())
			if rowCurrency != "" {
				if m.CurrencyColumn() == "" {
					return fmt.Errorf("%s has no row currency column", m.Name())
				}
				if err := r.SetText(m.CurrencyColumn(), rowCurrency); err != nil {
					return err
				}
			}

			in, err := parseValue(a.registry, args[2])
			if err != nil {
				return err
			}
			if err := f.Set(r, in); err != nil {
				return err
			}
			// Only this field's column is expected to hold a value.
			if r.Validate() != nil {
				if failures := r.Errors().On(f.Column()); len(failures) > 0 {
					return record.ValidationErrors(failures)
				}
			}

			money, err := f.Get(r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if money == nil {
				fmt.Fprintf(out, "%s = nil\n", f.Column())
				return nil
			}
			fmt.Fprintf(out, "%s = %d (%s, %s)\n", f.Column(), money.Cents(), money, money.Format())
			return nil
		},
	}

	cmd.Flags().StringVar(&rowCurrency, "row-currency", "", "Row currency for models with a currency column")
	return cmd
}

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "PostgreSQL schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.NewMigrator(a.cfg.DatabaseURL, a.cfg.MigrationsPath, a.logger).Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.NewMigrator(a.cfg.DatabaseURL, a.cfg.MigrationsPath, a.logger).Down()
			},
		},
	)

	return cmd
}

func putCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <model> <name=value>...",
		Short: "Create a record and save it",
		Long: `Create a record from name=value pairs and save it to the store.
Names are columns or monetized fields. A value of the form 24.00@CAD is
assigned as money in that currency; an empty value assigns nil.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.catalog.Model(args[0])
			if err != nil {
				return err
			}

			attrs, err := parseAttrs(a.registry, args[1:])
			if err != nil {
				return err
			}
			r, err := m.New(attrs)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			if err := m.Save(ctx, store, r); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.ID())
			return nil
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Load a record and print its money fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.catalog.Model(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			r, err := store.Find(ctx, m.Schema(), args[1])
			if err != nil {
				return err
			}

			return printRecord(cmd.OutOrStdout(), m, r)
		},
	}
}

func printRecord(out io.Writer, m *monetize.Model, r *record.Record) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", r.ID())
	for _, f := range m.Fields() {
		money, err := f.Get(r)
		if err != nil {
			return err
		}
		if money == nil {
			fmt.Fprintf(w, "%s\tnil\n", f.Name())
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name(), money, money.Format())
	}
	return w.Flush()
}

func parseAttrs(registry *domain.Registry, pairs []string) (map[string]any, error) {
	attrs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("attribute %q: want name=value", pair)
		}
		if _, dup := attrs[name]; dup {
			return nil, fmt.Errorf("attribute %q given twice", name)
		}
		in, err := parseValue(registry, raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		switch in.Kind() {
		case monetize.InputEmpty:
			attrs[name] = nil
		case monetize.InputText:
			attrs[name] = raw
		default:
			attrs[name] = in
		}
	}
	return attrs, nil
}

// parseValue reads "" as empty, "amount@CODE" as money and anything else as text.
func parseValue(registry *domain.Registry, raw string) (monetize.Input, error) {
	if raw == "" {
		return monetize.Empty(), nil
	}
	amount, code, ok := strings.Cut(raw, "@")
	if !ok {
		return monetize.FromText(raw), nil
	}
	c, err := registry.Find(code)
	if err != nil {
		return monetize.Input{}, err
	}
	cents, err := c.ParseMajor(amount)
	if err != nil {
		return monetize.Input{}, fmt.Errorf("%q: %w", amount, err)
	}
	return monetize.FromMoney(domain.NewMoney(cents, c)), nil
}
