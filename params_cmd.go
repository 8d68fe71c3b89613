package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gabornoise/internal/params"
)

func newParamsCmd(h *host) *cobra.Command {
	var (
		edit bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "params",
		Short: "List the stimulus parameters with their defaults and configured values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := h.cfg.StimulusValues()
			if err != nil {
				return err
			}
			if edit {
				return runParamsDialog(h.v, values, out, h.logger)
			}
			return writeSchema(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().BoolVar(&edit, "dialog", false, "open the parameter editor window")
	cmd.Flags().StringVarP(&out, "output", "o", "gabornoise.yaml", "config file the editor saves to")
	return cmd
}

// writeSchema prints one row per parameter in registry order.
func writeSchema(w io.Writer, values map[string]float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tBOUND\tUNIT\tDEFAULT\tVALUE")
	for _, s := range params.Schema() {
		value := s.DefaultString()
		if v, ok := values[s.Name]; ok {
			value = formatValue(s, v)
		}
		bound := "no"
		if s.Bound {
			bound = "yes"
		}
		unit := s.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.Name, s.Kind, bound, unit, s.DefaultString(), value)
	}
	return tw.Flush()
}

func formatValue(s params.Spec, v float64) string {
	if s.Kind == params.KindInt {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseEntries converts editor text into parameter values and validates
// them as a set.
func parseEntries(entries map[string]string) (map[string]float64, error) {
	values := make(map[string]float64, len(entries))
	var errs []error
	for name, text := range entries {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", name, text))
			continue
		}
		values[name] = v
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", params.ErrInvalid, errors.Join(errs...))
	}
	p, err := params.New(values)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return values, nil
}

// saveValues writes values into the stimulus section of v and saves the
// whole configuration to path.
func saveValues(v *viper.Viper, values map[string]float64, path string) error {
	for name, value := range values {
		v.Set("stimulus."+name, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
